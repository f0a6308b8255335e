// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package provider

import "errors"

var (
	// ErrUnavailable is returned when no provider can be resolved
	// and no fallback endpoint is configured.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrAuthorization is returned when the wallet provider rejects
	// the account authorization request.
	ErrAuthorization = errors.New("provider authorization rejected")
)
