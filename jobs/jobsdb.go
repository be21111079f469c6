package jobsdb

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"hookline.io/xano-connector/misc"
	"hookline.io/xano-connector/utils/logger"
)

const (
	WaitingState   = "waiting"
	ExecutingState = "executing"
	SucceededState = "succeeded"
	FailedState    = "failed"
)

// ExecutionJobT is one journal record per executed input item.
type ExecutionJobT struct {
	ID            uint      `json:"ID" gorm:"primaryKey"`
	UUID          string    `json:"UUID" gorm:"size:36;index"`
	Operation     string    `json:"Operation"`
	WorkspaceID   string    `json:"WorkspaceID"`
	TableID       string    `json:"TableID"`
	JobState      string    `json:"JobState"` // waiting, executing, succeeded, failed
	ErrorCode     string    `json:"ErrorCode"`
	ErrorResponse string    `json:"ErrorResponse" gorm:"type:text"`
	CreatedAt     time.Time `json:"CreatedAt"`
	ExecTime      time.Time `json:"ExecTime"`
}

type HandleT struct {
	dbHandle *gorm.DB
	enabled  bool
}

// Setup attaches the journal to an open gorm handle and migrates the
// record table. The journal stays disabled on a nil handle.
func (jd *HandleT) Setup(db *gorm.DB) error {
	if db == nil {
		jd.enabled = false
		return nil
	}

	if err := db.AutoMigrate(&ExecutionJobT{}); err != nil {
		return err
	}
	jd.dbHandle = db
	jd.enabled = true
	return nil
}

func (jd *HandleT) Enabled() bool {
	return jd != nil && jd.enabled
}

// Store writes one record. Journal failures are logged and swallowed;
// they must never fail the execution that produced them.
func (jd *HandleT) Store(job *ExecutionJobT) {
	if !jd.Enabled() {
		return
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if err := jd.dbHandle.Create(job).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to store execution job %s. Error: %s", job.UUID, err.Error()))
	}
}

func (jd *HandleT) UpdateStatus(jobUUID, state, errorCode, errorResponse string) {
	if !jd.Enabled() {
		return
	}
	err := jd.dbHandle.Model(&ExecutionJobT{}).
		Where("uuid = ?", jobUUID).
		Updates(map[string]interface{}{
			"job_state":      state,
			"error_code":     errorCode,
			"error_response": misc.TruncateStr(errorResponse, 2048),
			"exec_time":      time.Now(),
		}).Error
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to update execution job %s. Error: %s", jobUUID, err.Error()))
	}
}

func (jd *HandleT) CountByState(state string) int64 {
	if !jd.Enabled() {
		return 0
	}
	var count int64
	jd.dbHandle.Model(&ExecutionJobT{}).Where("job_state = ?", state).Count(&count)
	return count
}
