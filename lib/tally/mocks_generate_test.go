// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tally

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . LogReader
//go:generate mockgen -destination=subscription_mock_test.go -package=$GOPACKAGE github.com/ethereum/go-ethereum Subscription
