// internal/blockchain/sui/transaction/validator.go
package transaction

import (
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

// Validator checks transaction payloads structurally before they reach the network.
type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{
		logger: logger.Named("tx-validator"),
	}
}

func (v *Validator) ValidateTransaction(tx *sui.Transaction) error {
	if tx == nil || len(tx.Bytes) == 0 {
		return ErrEmptyTransaction
	}
	return nil
}

// ValidateSigned checks what a signer returned: decodable bytes and a
// serialized Ed25519 signature of the expected length.
func (v *Validator) ValidateSigned(signed *sui.SignedTransaction) error {
	if signed == nil {
		return ErrInvalidSignature
	}
	if err := v.ValidateTxBytes(signed.TxBytes); err != nil {
		return err
	}
	return v.ValidateSignature(signed.Signature)
}

func (v *Validator) ValidateTxBytes(txBytes string) error {
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTxBytes, err)
	}
	if len(raw) == 0 {
		return ErrInvalidTxBytes
	}
	return nil
}

func (v *Validator) ValidateSignature(signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(raw) == 0 {
		return ErrInvalidSignature
	}
	if raw[0] != wallet.FlagEd25519 {
		v.logger.Debug("Rejected signature scheme", zap.Uint8("flag", raw[0]))
		return fmt.Errorf("%w: flag 0x%02x", ErrUnknownScheme, raw[0])
	}
	if len(raw) != wallet.SerializedSignatureLen {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, wallet.SerializedSignatureLen, len(raw))
	}
	return nil
}
