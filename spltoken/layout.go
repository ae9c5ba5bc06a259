package spltoken

import (
	"bytes"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var (
	TokenLayoutSize = 165
	MintLayoutSize  = 82
)

type UserLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       [4]byte
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       [4]byte
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption [4]byte
	CloseAuthority       solana.PublicKey
}

func (user *UserLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, user)
}

type TokenLayout struct {
	MintAuthorityOption   [4]byte
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              byte
	IsInitialized         uint8
	FreezeAuthorityOption [4]byte
	FreezeAuthority       solana.PublicKey
}

func (token *TokenLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, token)
}
