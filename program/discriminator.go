package program

import (
	bin "github.com/gagliardetto/binary"
)

var (
	DbcVirtualPoolDiscriminator = AccountDiscriminator("VirtualPool")
	LaunchpadPoolDiscriminator  = AccountDiscriminator("PoolState")
)

// AccountDiscriminator is the 8 byte anchor prefix of an account type.
func AccountDiscriminator(name string) [8]byte {
	return bin.SighashTypeID(bin.SIGHASH_ACCOUNT_NAMESPACE, name)
}
