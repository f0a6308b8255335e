// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WildcardNetworkID is the network id matching any network.
const WildcardNetworkID = "*"

var (
	// ErrUnknownNetwork is returned when a network name is not in Networks.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrNetworkID is returned when a network id is neither the
	// wildcard nor a decimal number.
	ErrNetworkID = errors.New("invalid network id")
)

// Network describes an Ethereum network the election may be deployed on.
type Network struct {
	// Name is the network name, such as development or ropsten.
	Name string `validate:"required"`
	// ID is the expected network id in decimal, or "*" for any network.
	ID string `validate:"required"`
	// Host and Port locate a local development node.
	Host string
	Port uint16
	// URL and WSURL are hosted endpoint templates taking the
	// Infura project id as their single %s verb.
	URL   string
	WSURL string
	// Confirmations is the number of blocks, including the inclusion
	// block, after which a vote transaction is settled.
	Confirmations uint64 `validate:"gte=1"`
}

// Networks are the known networks, keyed by name.
var Networks = map[string]Network{
	"development": {
		Name:          "development",
		ID:            WildcardNetworkID,
		Host:          "127.0.0.1",
		Port:          7545,
		Confirmations: 1,
	},
	"ropsten": hosted("ropsten", 3),
	"kovan":   hosted("kovan", 42),
	"rinkeby": hosted("rinkeby", 4),
	"goerli":  hosted("goerli", 5),
	"sepolia": hosted("sepolia", 11155111),
	"mainnet": hosted("mainnet", 1),
}

func hosted(name string, id uint64) Network {
	return Network{
		Name:          name,
		ID:            strconv.FormatUint(id, 10),
		URL:           "https://" + name + ".infura.io/v3/%s",
		WSURL:         "wss://" + name + ".infura.io/ws/v3/%s",
		Confirmations: 3,
	}
}

// LookupNetwork returns the known network with the given name.
func LookupNetwork(name string) (network Network, err error) {
	network, ok := Networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return network, fmt.Errorf("%w: %q, expected one of: %s",
			ErrUnknownNetwork, name, strings.Join(NetworkNames(), ", "))
	}
	return network, nil
}

// NetworkNames returns the sorted names of the known networks.
func NetworkNames() (names []string) {
	names = make([]string, 0, len(Networks))
	for name := range Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsWildcard returns true if the network accepts any network id.
func (n Network) IsWildcard() bool {
	return n.ID == WildcardNetworkID
}

// Hosted returns true if the network is reached through a hosted endpoint.
func (n Network) Hosted() bool {
	return n.URL != ""
}

// NumericID returns the network id as a number.
// It errors for the wildcard id.
func (n Network) NumericID() (id uint64, err error) {
	id, err = strconv.ParseUint(n.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNetworkID, n.ID)
	}
	return id, nil
}

// Endpoint returns the fallback endpoint of the network.
// Hosted networks need the Infura project id. The websocket argument
// selects the websocket endpoint variant.
func (n Network) Endpoint(projectID string, websocket bool) string {
	if n.Hosted() {
		template := n.URL
		if websocket && n.WSURL != "" {
			template = n.WSURL
		}
		return fmt.Sprintf(template, projectID)
	}

	if n.Host == "" || n.Port == 0 {
		return ""
	}
	scheme := "http"
	if websocket {
		scheme = "ws"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, n.Host, n.Port)
}
