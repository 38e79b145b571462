// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
)

const (
	// FlagEd25519 is the signature scheme flag Sui uses for Ed25519.
	FlagEd25519 byte = 0x00

	// SerializedSignatureLen is flag || 64-byte signature || 32-byte public key.
	SerializedSignatureLen = 1 + ed25519.SignatureSize + ed25519.PublicKeySize
)

// transactionIntent is the intent prefix for TransactionData: scope 0, version 0, app Sui.
var transactionIntent = []byte{0, 0, 0}

var (
	ErrUnsupportedScheme = errors.New("unsupported key scheme")
	ErrAccountMismatch   = errors.New("account does not belong to this keypair")
)

// Account is the identity a transaction is signed for.
type Account struct {
	Address string
	Label   string
}

// Wallet holds a single Sui Ed25519 keypair.
type Wallet struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	address    string
}

// NewWallet builds a wallet from a 32-byte Ed25519 seed.
func NewWallet(seed []byte) (*Wallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid private key length: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		address:    DeriveAddress(pub),
	}, nil
}

// NewWalletFromKeystoreEntry parses one sui.keystore entry: base64(flag || seed).
func NewWalletFromKeystoreEntry(entry string) (*Wallet, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(entry))
	if err != nil {
		return nil, fmt.Errorf("failed to decode keystore entry: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty keystore entry")
	}
	if raw[0] != FlagEd25519 {
		return nil, fmt.Errorf("%w: flag 0x%02x", ErrUnsupportedScheme, raw[0])
	}
	return NewWallet(raw[1:])
}

// LoadWallets reads a sui.keystore file (a JSON array of entries).
// Entries with an unsupported scheme are skipped.
func LoadWallets(path string) ([]*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse keystore: %w", err)
	}

	wallets := make([]*Wallet, 0, len(entries))
	for _, entry := range entries {
		w, err := NewWalletFromKeystoreEntry(entry)
		if err != nil {
			if errors.Is(err, ErrUnsupportedScheme) {
				continue
			}
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("keystore %s has no Ed25519 keys", path)
	}
	return wallets, nil
}

// SelectWallet returns the wallet for address, or the first one when address is empty.
func SelectWallet(wallets []*Wallet, address string) (*Wallet, error) {
	if len(wallets) == 0 {
		return nil, fmt.Errorf("no wallets loaded")
	}
	if address == "" {
		return wallets[0], nil
	}
	for _, w := range wallets {
		if strings.EqualFold(w.Address(), address) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("address %s not found in keystore", address)
}

// DeriveAddress computes the Sui address of an Ed25519 public key.
func DeriveAddress(pub ed25519.PublicKey) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{FlagEd25519})
	h.Write(pub)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Address returns the 0x-prefixed Sui address.
func (w *Wallet) Address() string {
	return w.address
}

// Account returns the identity of this wallet.
func (w *Wallet) Account() *Account {
	return &Account{Address: w.address}
}

// SignTransaction signs tx for account. The account must be this wallet's own.
func (w *Wallet) SignTransaction(_ context.Context, tx *sui.Transaction, account *Account) (*sui.SignedTransaction, error) {
	if account == nil || !strings.EqualFold(account.Address, w.address) {
		return nil, ErrAccountMismatch
	}
	if tx == nil || len(tx.Bytes) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}

	digest := signingDigest(tx.Bytes)
	sig := ed25519.Sign(w.PrivateKey, digest[:])

	serialized := make([]byte, 0, SerializedSignatureLen)
	serialized = append(serialized, FlagEd25519)
	serialized = append(serialized, sig...)
	serialized = append(serialized, w.PublicKey...)

	return &sui.SignedTransaction{
		TxBytes:   tx.Base64(),
		Signature: base64.StdEncoding.EncodeToString(serialized),
	}, nil
}

// TransactionDigest computes the digest the network will assign to txBytes.
func TransactionDigest(txBytes []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte("TransactionData::"))
	h.Write(txBytes)
	return base58.Encode(h.Sum(nil))
}

// String returns the wallet address.
func (w *Wallet) String() string {
	return w.address
}

func signingDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}
