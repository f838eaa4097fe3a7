package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/yeremiapane/tableside-app/config"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

// QRService is the token authority for table QR codes. Issuing a new token
// overwrites the one stored on the table, which invalidates every previously
// printed code without a revocation list.
type QRService struct {
	DB *gorm.DB
}

func NewQRService(db *gorm.DB) *QRService {
	return &QRService{DB: db}
}

// Issue mints a signed token for the table, renders the printable QR PNG and
// rotates the stored token. Used both at table creation and for manual
// regeneration.
func (s *QRService) Issue(tableID uint) (*models.Table, string, []byte, error) {
	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		return nil, "", nil, err
	}

	token, err := utils.GenerateTableToken(table.ID, table.TableNumber, config.QRTokenTTL())
	if err != nil {
		return nil, "", nil, err
	}

	now := time.Now()
	table.PreviousQRToken = table.CurrentQRToken
	table.CurrentQRToken = token
	table.QRRotatedAt = &now
	if err := s.DB.Save(&table).Error; err != nil {
		return nil, "", nil, err
	}

	png, err := utils.RenderQRPNG(scanURL(token), 256)
	if err != nil {
		return nil, "", nil, err
	}

	utils.InfoLogger.Printf("QR token rotated for table %s (ID=%d)", table.TableNumber, table.ID)
	return &table, token, png, nil
}

// Validate decodes the presented token and then compares it textually against
// the table's currently stored token. The second check is the actual
// invalidation mechanism: a rotated-out token still carries a valid signature.
func (s *QRService) Validate(presented string) (*models.Table, error) {
	claims, err := utils.ParseTableToken(presented)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var table models.Table
	if err := s.DB.First(&table, claims.TableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if table.CurrentQRToken != presented {
		// Replay of a rotated code is security relevant, log it.
		utils.ErrorLogger.Printf("Stale QR token presented for table %s (ID=%d) at %s",
			table.TableNumber, table.ID, time.Now().Format(time.RFC3339))
		return nil, ErrTokenStale
	}

	return &table, nil
}

func scanURL(token string) string {
	base := os.Getenv("SCAN_BASE_URL")
	if base == "" {
		base = "https://order.tableside.local/scan"
	}
	return fmt.Sprintf("%s?token=%s", base, token)
}
