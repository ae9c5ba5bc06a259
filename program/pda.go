package program

import "github.com/gagliardetto/solana-go"

func mustFindProgramAddress(seeds [][]byte, programID solana.PublicKey) solana.PublicKey {
	address, _, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		panic(err)
	}
	return address
}

// MeteoraVaultAddresses derives the vault, its token account and its lp mint for a token.
func MeteoraVaultAddresses(token solana.PublicKey) (vault, tokenVault, lpMint solana.PublicKey) {
	vault = mustFindProgramAddress([][]byte{[]byte("vault"), token[:], MeteoraVaultBase[:]}, MeteoraVault)
	tokenVault = mustFindProgramAddress([][]byte{[]byte("token_vault"), vault[:]}, MeteoraVault)
	lpMint = mustFindProgramAddress([][]byte{[]byte("lp_mint"), vault[:]}, MeteoraVault)
	return
}

func MetadataAddress(mint solana.PublicKey) solana.PublicKey {
	return mustFindProgramAddress([][]byte{[]byte("metadata"), Metaplex[:], mint[:]}, Metaplex)
}

func BondingCurveAddress(mint solana.PublicKey) solana.PublicKey {
	return mustFindProgramAddress([][]byte{[]byte("bonding-curve"), mint[:]}, PumpBondingCurve)
}

// PumpPoolAuthority is the creator recorded on pools migrated from the bonding curve.
func PumpPoolAuthority(baseMint solana.PublicKey) solana.PublicKey {
	return mustFindProgramAddress([][]byte{[]byte("pool-authority"), baseMint[:]}, PumpBondingCurve)
}

func PumpCreatorVaultAuthority(coinCreator solana.PublicKey) solana.PublicKey {
	return mustFindProgramAddress([][]byte{[]byte("creator_vault"), coinCreator[:]}, PumpSwap)
}

func AssociatedTokenAddress(wallet, mint solana.PublicKey) solana.PublicKey {
	address, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		panic(err)
	}
	return address
}

// PumpCurveCreatorVault collects the creator share of bonding curve trades.
func PumpCurveCreatorVault(creator solana.PublicKey) solana.PublicKey {
	return mustFindProgramAddress([][]byte{[]byte("creator-vault"), creator[:]}, PumpBondingCurve)
}
