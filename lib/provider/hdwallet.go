// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package provider

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/cosmos/go-bip39"
)

// ErrMnemonic is returned when the mnemonic is not a valid BIP-39 mnemonic.
var ErrMnemonic = errors.New("invalid mnemonic")

// ethereumPath is the BIP-44 path m/44'/60'/0'/0 of Ethereum accounts.
var ethereumPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
}

// DeriveKey derives the private key of the account at the index given
// from a BIP-39 mnemonic, along the path m/44'/60'/0'/0/index.
func DeriveKey(mnemonic string, index uint32) (key *ecdsa.PrivateKey, err error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMnemonic, err)
	}

	extendedKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("creating master key: %w", err)
	}

	path := append(ethereumPath[:len(ethereumPath):len(ethereumPath)], index)
	for _, child := range path {
		extendedKey, err = extendedKey.Derive(child)
		if err != nil {
			return nil, fmt.Errorf("deriving child %d: %w", child, err)
		}
	}

	privateKey, err := extendedKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extracting private key: %w", err)
	}

	return privateKey.ToECDSA(), nil
}
