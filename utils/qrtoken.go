package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// The table QR credential is a signed JWT carrying the table identity.
// A valid signature alone is not enough to scan a table: the presented token
// must also match the token currently stored on the table row. Signed with a
// secret separate from the staff JWT secret so rotating one does not log
// every guest or every staff member out at once.

var qrSecret []byte

func init() {
	secret := os.Getenv("QR_TOKEN_SECRET")
	if secret == "" {
		secret = "TablesideQRDevSecret"
	}
	qrSecret = []byte(secret)
}

type TableClaims struct {
	TableID     uint   `json:"table_id"`
	TableNumber string `json:"table_number"`
	jwt.RegisteredClaims
}

func GenerateTableToken(tableID uint, tableNumber string, ttl time.Duration) (string, error) {
	claims := &TableClaims{
		TableID:     tableID,
		TableNumber: tableNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "TablesideApp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(qrSecret)
}

// ParseTableToken verifies signature and expiry. Expired tokens are treated
// the same as malformed ones.
func ParseTableToken(tokenString string) (*TableClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TableClaims{}, func(token *jwt.Token) (interface{}, error) {
		return qrSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired table token")
	}

	claims, ok := token.Claims.(*TableClaims)
	if !ok {
		return nil, errors.New("invalid table token claims")
	}

	return claims, nil
}

// RenderQRPNG encodes the scan URL into a PNG for printing on the table.
func RenderQRPNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
