package audit

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/models"
)

var (
	ErrRecordNotFound = errors.New("audit record not found")
	ErrEmptyBody      = errors.New("record body is empty, nothing to whitelist")
	ErrNotBlocked     = errors.New("record was not blocked")
)

// WhitelistSink receives the body of an overridden record. Implemented by
// the whitelist store; kept as an interface so the audit package stays free
// of pipeline dependencies.
type WhitelistSink interface {
	Add(sourceRecordUUID, body string) error
}

// Service is the append-only audit log. Records are keyed by UUID and never
// deleted by the pipeline; deletion is an explicit operator action.
type Service struct {
	db        *gorm.DB
	whitelist WhitelistSink
}

// NewService returns an audit Service backed by the provided DB.
func NewService(db *gorm.DB, whitelist WhitelistSink) *Service {
	return &Service{db: db, whitelist: whitelist}
}

// Append persists a new audit record.
func (s *Service) Append(rec *models.AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return s.db.Create(rec).Error
}

// Get returns a record by UUID.
func (s *Service) Get(uuid string) (*models.AuditRecord, error) {
	var rec models.AuditRecord
	if err := s.db.Where("uuid = ?", uuid).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Recent returns the most recent records, newest first.
func (s *Service) Recent(limit int) ([]models.AuditRecord, error) {
	var recs []models.AuditRecord
	q := s.db.Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Stats summarizes the stored records for the dashboard.
type Stats struct {
	Total         int64      `json:"total_records"`
	Malicious     int64      `json:"malicious_records"`
	Benign        int64      `json:"benign_records"`
	Oldest        *time.Time `json:"oldest_record,omitempty"`
	Newest        *time.Time `json:"newest_record,omitempty"`
	DetectionRate float64    `json:"detection_rate"`
}

// Stats computes aggregate counts over the audit log.
func (s *Service) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&models.AuditRecord{}).Count(&st.Total).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.Model(&models.AuditRecord{}).Where("is_malicious = ?", true).Count(&st.Malicious).Error; err != nil {
		return Stats{}, err
	}
	st.Benign = st.Total - st.Malicious

	if st.Total > 0 {
		var oldest, newest models.AuditRecord
		if err := s.db.Order("created_at asc").First(&oldest).Error; err != nil {
			return Stats{}, err
		}
		if err := s.db.Order("created_at desc").First(&newest).Error; err != nil {
			return Stats{}, err
		}
		st.Oldest = &oldest.CreatedAt
		st.Newest = &newest.CreatedAt
		st.DetectionRate = float64(st.Malicious) / float64(st.Total) * 100
	}

	return st, nil
}

// Override corrects a false positive: it copies the blocked record's body to
// the whitelist and flips the stored action to ALLOW. The rule store is left
// untouched. Returns the updated record.
func (s *Service) Override(uuid string) (*models.AuditRecord, error) {
	rec, err := s.Get(uuid)
	if err != nil {
		return nil, err
	}
	if rec.Action != models.ActionBlock {
		return nil, ErrNotBlocked
	}
	if rec.Body == "" {
		return nil, ErrEmptyBody
	}

	if err := s.whitelist.Add(rec.UUID, rec.Body); err != nil {
		return nil, err
	}

	rec.Action = models.ActionAllow
	rec.Overridden = true
	if err := s.db.Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a single record. Operator-only escape hatch.
func (s *Service) Delete(uuid string) error {
	res := s.db.Where("uuid = ?", uuid).Delete(&models.AuditRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Purge removes every record and returns the number deleted.
func (s *Service) Purge() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&models.AuditRecord{})
	return res.RowsAffected, res.Error
}

// PruneOlderThan removes records created before the cutoff. Used by the
// retention scheduler.
func (s *Service) PruneOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditRecord{})
	return res.RowsAffected, res.Error
}
