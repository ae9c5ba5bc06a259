package pumpfun

import (
	"bytes"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var BondingCurveLayoutSize = 150

type BondingCurveLayout struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             uint8
	Creator              solana.PublicKey
}

func (l *BondingCurveLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}
