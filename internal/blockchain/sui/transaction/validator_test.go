package transaction

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

func TestValidateSigned(t *testing.T) {
	v := NewValidator(zap.NewNop())
	txBytes := base64.StdEncoding.EncodeToString([]byte("tx"))

	good := make([]byte, wallet.SerializedSignatureLen)
	short := make([]byte, 10)
	secp := make([]byte, wallet.SerializedSignatureLen)
	secp[0] = 0x01

	tests := []struct {
		name    string
		signed  *sui.SignedTransaction
		wantErr error
	}{
		{"valid", &sui.SignedTransaction{TxBytes: txBytes, Signature: base64.StdEncoding.EncodeToString(good)}, nil},
		{"nil", nil, ErrInvalidSignature},
		{"bad tx bytes", &sui.SignedTransaction{TxBytes: "%%%", Signature: base64.StdEncoding.EncodeToString(good)}, ErrInvalidTxBytes},
		{"empty tx bytes", &sui.SignedTransaction{Signature: base64.StdEncoding.EncodeToString(good)}, ErrInvalidTxBytes},
		{"short signature", &sui.SignedTransaction{TxBytes: txBytes, Signature: base64.StdEncoding.EncodeToString(short)}, ErrInvalidSignature},
		{"other scheme", &sui.SignedTransaction{TxBytes: txBytes, Signature: base64.StdEncoding.EncodeToString(secp)}, ErrUnknownScheme},
		{"empty signature", &sui.SignedTransaction{TxBytes: txBytes}, ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSigned(tt.signed)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	v := NewValidator(zap.NewNop())
	assert.ErrorIs(t, v.ValidateTransaction(nil), ErrEmptyTransaction)
	assert.ErrorIs(t, v.ValidateTransaction(&sui.Transaction{}), ErrEmptyTransaction)
	assert.NoError(t, v.ValidateTransaction(&sui.Transaction{Bytes: []byte{1}}))
}
