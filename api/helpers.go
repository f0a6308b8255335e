// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"errors"
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/rpc/v2"
	"github.com/jpillora/ipfilter"
)

var (
	errParseIP         = errors.New("unable to parse IP")
	errExternalRefused = errors.New("external request refused")
)

// LocalhostFilter creates an ipfilter object for localhost.
func LocalhostFilter() *ipfilter.IPFilter {
	return ipfilter.New(ipfilter.Options{
		BlockByDefault: true,
		AllowedIPs:     []string{"127.0.0.1", "::1"},
	})
}

// localOnly returns an error if the remote address given is not localhost.
func localOnly(filter *ipfilter.IPFilter, remoteAddress string) error {
	ip, _, err := net.SplitHostPort(remoteAddress)
	if err != nil {
		return fmt.Errorf("%w: %s", errParseIP, remoteAddress)
	}
	if !filter.Allowed(ip) {
		return fmt.Errorf("%w: from %s", errExternalRefused, ip)
	}
	return nil
}

func requestValidator(filter *ipfilter.IPFilter, validate *validator.Validate) func(
	r *rpc.RequestInfo, v interface{}) error {
	return func(r *rpc.RequestInfo, v interface{}) error {
		err := localOnly(filter, r.Request.RemoteAddr)
		if err != nil {
			return err
		}

		err = validate.Struct(v)
		if err != nil {
			return fmt.Errorf("invalid %s request: %w", r.Method, err)
		}
		return nil
	}
}
