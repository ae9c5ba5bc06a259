package pumpswap

import (
	"bytes"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var PoolLayoutSize = 300

type PoolLayout struct {
	Discriminator         [8]byte
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LpMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LpSupply              uint64
	CoinCreator           solana.PublicKey
}

func (l *PoolLayout) unpack(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, l)
}
