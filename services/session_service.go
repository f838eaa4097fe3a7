package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionService tracks the one dining session a table may have open.
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// OpenOrReuse returns the table's active session, creating one when none
// exists. A second device scanning the same table joins the running session.
// If the session is already bound to a different authenticated user, the
// scan is rejected.
func (s *SessionService) OpenOrReuse(tableID uint, userID *uint) (*models.TableSession, error) {
	var session models.TableSession

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, tableID).Error; err != nil {
			return err
		}

		var existing models.TableSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_id = ? AND status = ?", tableID, models.SessionStatusActive).
			First(&existing).Error
		if err == nil {
			if existing.UserID != nil && userID != nil && *existing.UserID != *userID {
				return ErrTableOccupiedByOther
			}
			if existing.UserID == nil && userID != nil {
				existing.UserID = userID
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			}
			session = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		session = models.TableSession{
			TableID:      tableID,
			UserID:       userID,
			SessionToken: newSessionToken(),
			Status:       models.SessionStatusActive,
			StartedAt:    time.Now(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		table.CurrentSessionID = &session.ID
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// BindUser attaches a user who authenticated mid-session. Binding the same
// user again is a no-op.
func (s *SessionService) BindUser(sessionID uint, userID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.UserID != nil {
		if *session.UserID == userID {
			return &session, nil
		}
		return nil, ErrTableOccupiedByOther
	}

	session.UserID = &userID
	if err := s.DB.Save(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// End closes a session. Ending an already-closed session succeeds.
func (s *SessionService) End(sessionID uint) error {
	var session models.TableSession
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if session.Status == models.SessionStatusClosed {
		return nil
	}

	now := time.Now()
	session.Status = models.SessionStatusClosed
	session.EndedAt = &now
	if err := s.DB.Save(&session).Error; err != nil {
		return err
	}

	// Detach the table's session pointer if it still points here.
	s.DB.Model(&models.Table{}).
		Where("id = ? AND current_session_id = ?", session.TableID, session.ID).
		Update("current_session_id", nil)

	utils.InfoLogger.Printf("Session %d closed for table %d", session.ID, session.TableID)
	return nil
}

// Validate looks a session up by its opaque token. Failures are soft: the
// caller gets (nil, false) and decides whether to block or degrade. The
// claimed table id is cross-checked so a token minted at one table cannot be
// replayed at another.
func (s *SessionService) Validate(sessionToken string, tableID uint) (*models.TableSession, bool) {
	if strings.TrimSpace(sessionToken) == "" {
		return nil, false
	}

	var session models.TableSession
	err := s.DB.
		Where("session_token = ? AND status = ?", sessionToken, models.SessionStatusActive).
		First(&session).Error
	if err != nil {
		return nil, false
	}

	if tableID != 0 && session.TableID != tableID {
		return nil, false
	}

	return &session, true
}

func newSessionToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")[:48]
}
