package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/spltoken"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	MultipleAccountSliceSize = 100
)

type Account struct {
	PubKey solana.PublicKey
	Owner  solana.PublicKey
	Data   []byte
	Height uint64
}

func newAccount(pubkey solana.PublicKey, account *rpc.Account, height uint64) *Account {
	return &Account{
		PubKey: pubkey,
		Owner:  account.Owner,
		Data:   account.Data.GetBinary(),
		Height: height,
	}
}

// ProgramAccounts returns every account owned by owner whose data is exactly dataSize bytes.
func (backend *Backend) ProgramAccounts(ctx context.Context, owner solana.PublicKey, dataSize uint64) ([]*Account, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: backend.commitment,
	}
	if dataSize > 0 {
		opts.Filters = []rpc.RPCFilter{{DataSize: dataSize}}
	}
	result, err := backend.rpcClient.GetProgramAccountsWithOpts(ctx, owner, opts)
	if err != nil {
		return nil, fmt.Errorf("program(%s) accounts err: %w", owner, err)
	}
	accounts := make([]*Account, 0, len(result))
	for _, account := range result {
		if account.Account == nil {
			continue
		}
		accounts = append(accounts, newAccount(account.Pubkey, account.Account, 0))
	}
	return accounts, nil
}

// Accounts fetches pubkeys in slices of MultipleAccountSliceSize. Missing accounts are nil in the result.
func (backend *Backend) Accounts(ctx context.Context, pubkeys []solana.PublicKey) ([]*Account, error) {
	accounts := make([]*Account, 0, len(pubkeys))
	index, end := 0, 0
	for index < len(pubkeys) {
		if end = index + MultipleAccountSliceSize; end > len(pubkeys) {
			end = len(pubkeys)
		}
		getMultipleAccountsRsp, err := backend.rpcClient.GetMultipleAccountsWithOpts(ctx, pubkeys[index:end],
			&rpc.GetMultipleAccountsOpts{Encoding: solana.EncodingBase64, Commitment: backend.commitment})
		if err != nil {
			return nil, err
		}
		if len(getMultipleAccountsRsp.Value) != end-index {
			return nil, fmt.Errorf("get accounts err, some account is missing")
		}
		for i, account := range getMultipleAccountsRsp.Value {
			if account == nil {
				accounts = append(accounts, nil)
				continue
			}
			accounts = append(accounts, newAccount(pubkeys[index+i], account, getMultipleAccountsRsp.Context.Slot))
		}
		index = end
	}
	return accounts, nil
}

func (backend *Backend) Account(ctx context.Context, pubkey solana.PublicKey) (*Account, error) {
	response, err := backend.rpcClient.GetAccountInfoWithOpts(ctx, pubkey,
		&rpc.GetAccountInfoOpts{Encoding: solana.EncodingBase64, Commitment: backend.commitment})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && response.Value == nil) {
		return nil, fmt.Errorf("account(%s): %w", pubkey, program.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("account(%s) fetch err: %w", pubkey, err)
	}
	return newAccount(pubkey, response.Value, response.Context.Slot), nil
}

func (backend *Backend) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	account, err := backend.Account(ctx, key)
	if err != nil {
		return nil, err
	}
	return account.Data, nil
}

// TokenSupply reads the supply field of a mint account.
func (backend *Backend) TokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	data, err := backend.AccountData(ctx, mint)
	if err != nil {
		return 0, err
	}
	token, err := spltoken.ParseToken(mint, data)
	if err != nil {
		return 0, err
	}
	return token.Supply, nil
}

// TokenAccountBalance reads the raw amount of a token account.
func (backend *Backend) TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	data, err := backend.AccountData(ctx, account)
	if err != nil {
		return 0, err
	}
	user, err := spltoken.ParseUser(account, data)
	if err != nil {
		return 0, err
	}
	return user.Amount, nil
}
