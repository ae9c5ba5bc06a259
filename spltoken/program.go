package spltoken

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ParseUser decodes a token account. Token-2022 extensions past the base layout are ignored.
func ParseUser(key solana.PublicKey, data []byte) (UserLayout, error) {
	user := UserLayout{}
	if len(data) < TokenLayoutSize {
		return user, fmt.Errorf("spl token account(%s) data size is not valid, expected: %d, actual: %d", key, TokenLayoutSize, len(data))
	}
	if err := user.unpack(data); err != nil {
		return user, fmt.Errorf("spl token account(%s) data is not valid, err: %w", key, err)
	}
	return user, nil
}

// ParseToken decodes a mint account.
func ParseToken(key solana.PublicKey, data []byte) (TokenLayout, error) {
	token := TokenLayout{}
	if len(data) < MintLayoutSize {
		return token, fmt.Errorf("mint account(%s) data size is not valid, expected: %d, actual: %d", key, MintLayoutSize, len(data))
	}
	if err := token.unpack(data); err != nil {
		return token, fmt.Errorf("mint account(%s) data is not valid, err: %w", key, err)
	}
	return token, nil
}
