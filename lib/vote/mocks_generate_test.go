// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package vote

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . Chain
//go:generate mockgen -destination=transactor_mock_test.go -package=$GOPACKAGE github.com/ChainSafe/tally/lib/provider Transactor
