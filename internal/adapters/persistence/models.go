package persistence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FabricBatchModel represents the fabric_batches table
type FabricBatchModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	FabricType string    `gorm:"column:fabric_type;not null;index:idx_fabric_batch_identity"`
	Color      string    `gorm:"column:color;not null;index:idx_fabric_batch_identity"`
	Design     string    `gorm:"column:design;not null;index:idx_fabric_batch_identity"`
	Quality    string    `gorm:"column:quality;not null;index:idx_fabric_batch_identity"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (FabricBatchModel) TableName() string {
	return "fabric_batches"
}

// FabricRollModel represents the fabric_rolls table
type FabricRollModel struct {
	ID              string          `gorm:"column:id;primaryKey"`
	BatchID         string          `gorm:"column:batch_id;not null;index"`
	OriginalLength  decimal.Decimal `gorm:"column:original_length;type:numeric(14,3);not null"`
	RemainingLength decimal.Decimal `gorm:"column:remaining_length;type:numeric(14,3);not null"`
	Legacy          bool            `gorm:"column:legacy;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;not null"`
	Version         int             `gorm:"column:version;not null;default:0"`
}

func (FabricRollModel) TableName() string {
	return "fabric_rolls"
}

// RollUsageModel represents the roll_usages table (append-only usage log)
type RollUsageModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	RollID     string          `gorm:"column:roll_id;not null;index"`
	JobID      string          `gorm:"column:job_id;not null;index"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,3);not null"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
}

func (RollUsageModel) TableName() string {
	return "roll_usages"
}

// CuttingJobModel represents the cutting_jobs table
type CuttingJobModel struct {
	ID          string         `gorm:"column:id;primaryKey"`
	OrderLineID string         `gorm:"column:order_line_id;index"`
	ProductID   string         `gorm:"column:product_id;not null"`
	Target      datatypes.JSON `gorm:"column:target;not null"`
	WorkerID    string         `gorm:"column:worker_id;not null"`
	Status      string         `gorm:"column:status;not null;index"`
	StageOneID  string         `gorm:"column:stage_one_id"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	CompletedAt *time.Time     `gorm:"column:completed_at"`
	Version     int            `gorm:"column:version;not null;default:0"`
}

func (CuttingJobModel) TableName() string {
	return "cutting_jobs"
}

// JobFabricUsageModel represents the job_fabric_usages table. The id is shared
// with the roll usage the entry was reserved as.
type JobFabricUsageModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	JobID      string          `gorm:"column:job_id;not null;index"`
	RollID     string          `gorm:"column:roll_id;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,3);not null"`
	Pieces     datatypes.JSON  `gorm:"column:pieces"` // null when the usage covers every size
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
}

func (JobFabricUsageModel) TableName() string {
	return "job_fabric_usages"
}

// StageAssignmentModel represents the stage_assignments table. External
// subcontract data lives in its own columns, never inside remaining.
type StageAssignmentModel struct {
	ID            string              `gorm:"column:id;primaryKey"`
	JobID         string              `gorm:"column:job_id;not null;index"`
	ParentID      string              `gorm:"column:parent_id;index"`
	OrderLineID   string              `gorm:"column:order_line_id;index"`
	ProductID     string              `gorm:"column:product_id;not null"`
	StageIndex    int                 `gorm:"column:stage_index;not null;index"`
	Remaining     datatypes.JSON      `gorm:"column:remaining;not null"`
	Status        string              `gorm:"column:status;not null;index"`
	AutoFulfilled bool                `gorm:"column:auto_fulfilled;not null;default:false"`
	Forwarded     bool                `gorm:"column:forwarded;not null;default:false"`
	Subcontractor *string             `gorm:"column:subcontractor;index"`
	ExternalRate  decimal.NullDecimal `gorm:"column:external_rate;type:numeric(14,4)"`
	Sent          datatypes.JSON      `gorm:"column:sent"`
	Received      datatypes.JSON      `gorm:"column:received"`
	SentAt        *time.Time          `gorm:"column:sent_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;not null"`
	Version       int                 `gorm:"column:version;not null;default:0"`
}

func (StageAssignmentModel) TableName() string {
	return "stage_assignments"
}

// WorkerAllocationModel represents the worker_allocations table
type WorkerAllocationModel struct {
	ID           string          `gorm:"column:id;primaryKey"`
	AssignmentID string          `gorm:"column:assignment_id;not null;index"`
	EmployeeID   string          `gorm:"column:employee_id;not null;index"`
	Quantities   datatypes.JSON  `gorm:"column:quantities;not null"`
	RatePerPiece decimal.Decimal `gorm:"column:rate_per_piece;type:numeric(14,4);not null"`
}

func (WorkerAllocationModel) TableName() string {
	return "worker_allocations"
}

// PayableEventModel represents the payable_events outbox table
type PayableEventModel struct {
	ID            string          `gorm:"column:id;primaryKey"`
	AssignmentID  string          `gorm:"column:assignment_id;not null;index"`
	Subcontractor string          `gorm:"column:subcontractor;not null;index"`
	Quantities    datatypes.JSON  `gorm:"column:quantities;not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	RatePerPiece  decimal.Decimal `gorm:"column:rate_per_piece;type:numeric(14,4);not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(16,4);not null"`
	OccurredAt    time.Time       `gorm:"column:occurred_at;not null"`
	PublishedAt   *time.Time      `gorm:"column:published_at;index"`
}

func (PayableEventModel) TableName() string {
	return "payable_events"
}

// StockBatchModel represents the stock_batches table
type StockBatchModel struct {
	ID                 string         `gorm:"column:id;primaryKey"`
	ProductID          string         `gorm:"column:product_id;not null;index"`
	OrderLineID        string         `gorm:"column:order_line_id;index"`
	SourceAssignmentID string         `gorm:"column:source_assignment_id"`
	Produced           datatypes.JSON `gorm:"column:produced;not null"`
	Available          datatypes.JSON `gorm:"column:available;not null"`
	DispatchState      string         `gorm:"column:dispatch_state"`
	CreatedAt          time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;not null"`
	Version            int            `gorm:"column:version;not null;default:0"`
}

func (StockBatchModel) TableName() string {
	return "stock_batches"
}

// StockUsageModel represents the stock_usages table
type StockUsageModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	SourceBatchID string         `gorm:"column:source_batch_id;not null;index"`
	JobID         string         `gorm:"column:job_id;not null;index"`
	AssignmentID  string         `gorm:"column:assignment_id"`
	OrderLineID   string         `gorm:"column:order_line_id;index"`
	ProductID     string         `gorm:"column:product_id;not null"`
	StageIndex    int            `gorm:"column:stage_index;not null"` // 0 for usage recorded on the cutting job
	Quantities    datatypes.JSON `gorm:"column:quantities;not null"`
	DispatchState string         `gorm:"column:dispatch_state"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
}

func (StockUsageModel) TableName() string {
	return "stock_usages"
}

// OrderModel represents the orders table
type OrderModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ClientRef string    `gorm:"column:client_ref;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel represents the order_lines table
type OrderLineModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	OrderID   string         `gorm:"column:order_id;not null;index"`
	Position  int            `gorm:"column:position;not null"`
	ProductID string         `gorm:"column:product_id;not null"`
	Target    datatypes.JSON `gorm:"column:target;not null"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

// AllModels lists every table owned by the engine, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&FabricBatchModel{},
		&FabricRollModel{},
		&RollUsageModel{},
		&CuttingJobModel{},
		&JobFabricUsageModel{},
		&StageAssignmentModel{},
		&WorkerAllocationModel{},
		&PayableEventModel{},
		&StockBatchModel{},
		&StockUsageModel{},
		&OrderModel{},
		&OrderLineModel{},
	}
}
