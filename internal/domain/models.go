// Package domain defines the persistence models for doctors, patients,
// exercise routines, completions, and minted achievement NFTs. These types
// are mapped with GORM and form the core data layer of the rehabilitation
// reward backend.
package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// AIGeneratedIDPrefix marks exercises suggested by the AI collaborator that
// have not been persisted yet.
const AIGeneratedIDPrefix = "ai-generated-"

// Completion statuses.
const (
	StatusCompleted        = "completed"
	StatusNeedsImprovement = "needs_improvement"
	StatusFailed           = "failed"
)

// Doctor is a clinician profile. One is created per doctor signup.
type Doctor struct {
	ID             string    `json:"id"             gorm:"type:char(36);primaryKey"`
	Name           string    `json:"name"           gorm:"type:varchar(255);not null"`
	License        string    `json:"license"        gorm:"type:varchar(64)"`
	Specialization string    `json:"specialization" gorm:"type:varchar(128)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Doctor.
func (Doctor) TableName() string { return "doctors" }

// Patient is a rehabilitation patient. WalletAddress receives reward NFTs.
type Patient struct {
	ID                string                      `json:"id"                 gorm:"type:char(36);primaryKey"`
	Name              string                      `json:"name"               gorm:"type:varchar(255);not null"`
	WalletAddress     string                      `json:"wallet_address"     gorm:"type:varchar(64);index"`
	MedicalConditions datatypes.JSONSlice[string] `json:"medical_conditions"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// TableName returns the database table name for Patient.
func (Patient) TableName() string { return "patients" }

// Exercise is a library entry, either doctor-authored or AI-generated.
//
// Difficulty ranges 1..5. DefaultReps and DefaultDurationSeconds are
// alternatives: rep-based exercises leave the duration nil and vice versa.
type Exercise struct {
	ID                     string    `json:"id"                                 gorm:"type:varchar(64);primaryKey"`
	Name                   string    `json:"name"                               gorm:"type:varchar(255);not null;index"`
	Category               string    `json:"category"                           gorm:"type:varchar(64)"`
	Difficulty             int       `json:"difficulty"                         gorm:"not null;default:1;check:difficulty BETWEEN 1 AND 5"`
	Description            string    `json:"description,omitempty"              gorm:"type:text"`
	DefaultSets            int       `json:"default_sets"`
	DefaultReps            *int      `json:"default_reps,omitempty"`
	DefaultDurationSeconds *int      `json:"default_duration_seconds,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName returns the database table name for Exercise.
func (Exercise) TableName() string { return "exercises" }

// IsAIGenerated reports whether the exercise carries a synthetic AI id.
func (e Exercise) IsAIGenerated() bool { return strings.HasPrefix(e.ID, AIGeneratedIDPrefix) }

// Routine is a doctor-prescribed set of exercises for a patient.
type Routine struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	PatientID        string    `json:"patient_id"         gorm:"type:char(36);not null;index:idx_routine_patient_active,priority:1"`
	DoctorID         string    `json:"doctor_id"          gorm:"type:char(36);not null;index"`
	Title            string    `json:"title"              gorm:"type:varchar(255);not null"`
	FrequencyPerWeek int       `json:"frequency_per_week" gorm:"not null;default:3"`
	IsActive         bool      `json:"is_active"          gorm:"not null;default:true;index:idx_routine_patient_active,priority:2"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Patient   Patient           `json:"-"                   gorm:"foreignKey:PatientID;references:ID"`
	Doctor    Doctor            `json:"-"                   gorm:"foreignKey:DoctorID;references:ID"`
	Exercises []RoutineExercise `json:"exercises,omitempty" gorm:"foreignKey:RoutineID"`
}

// TableName returns the database table name for Routine.
func (Routine) TableName() string { return "routines" }

// RoutineExercise fixes the parameters of one exercise within a routine.
type RoutineExercise struct {
	ID              string    `json:"id"                         gorm:"type:char(36);primaryKey"`
	RoutineID       string    `json:"routine_id"                 gorm:"type:char(36);not null;index:idx_routine_exercise,priority:1"`
	ExerciseID      string    `json:"exercise_id"                gorm:"type:varchar(64);not null;index:idx_routine_exercise,priority:2"`
	Sets            int       `json:"sets"                       gorm:"not null;default:3"`
	Reps            *int      `json:"reps,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	RestSeconds     int       `json:"rest_seconds"               gorm:"not null;default:60"`
	OrderIndex      int       `json:"order_index"                gorm:"not null;default:1"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Routine  Routine  `json:"-"                          gorm:"foreignKey:RoutineID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Exercise Exercise `json:"exercise,omitempty"         gorm:"foreignKey:ExerciseID;references:ID"`
}

// TableName returns the database table name for RoutineExercise.
func (RoutineExercise) TableName() string { return "routine_exercises" }

// ExerciseCompletion is the terminal record of one attempt.
type ExerciseCompletion struct {
	ID                string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	RoutineExerciseID string    `json:"routine_exercise_id"    gorm:"type:char(36);not null;index"`
	PatientID         string    `json:"patient_id"             gorm:"type:char(36);not null;index:idx_completion_patient_created,priority:1"`
	FormScore         int       `json:"form_score"             gorm:"not null;check:form_score BETWEEN 0 AND 100"`
	CompletionStatus  string    `json:"completion_status"      gorm:"type:varchar(32);not null;check:completion_status IN ('completed','needs_improvement','failed')"`
	Feedback          string    `json:"feedback,omitempty"     gorm:"type:text"`
	NFTMinted         bool      `json:"nft_minted"             gorm:"not null;default:false"`
	NFTTokenID        *string   `json:"nft_token_id,omitempty" gorm:"type:varchar(128)"`
	CreatedAt         time.Time `json:"created_at"             gorm:"index:idx_completion_patient_created,priority:2"`
	UpdatedAt         time.Time `json:"updated_at"`

	RoutineExercise RoutineExercise `json:"-" gorm:"foreignKey:RoutineExerciseID;references:ID"`
	Patient         Patient         `json:"-" gorm:"foreignKey:PatientID;references:ID"`
}

// TableName returns the database table name for ExerciseCompletion.
func (ExerciseCompletion) TableName() string { return "exercise_completions" }

// NFTAttribute is one trait/value pair of ERC-721 metadata.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// NFT records a successful mint against a completion.
type NFT struct {
	ID                   string                            `json:"id"                     gorm:"type:char(36);primaryKey"`
	PatientID            string                            `json:"patient_id"             gorm:"type:char(36);not null;index"`
	ExerciseCompletionID string                            `json:"exercise_completion_id" gorm:"type:char(36);not null;index"`
	Name                 string                            `json:"name"                   gorm:"type:varchar(255)"`
	ImageURL             string                            `json:"image_url"              gorm:"type:text;not null"`
	ImagePrompt          string                            `json:"image_prompt,omitempty" gorm:"type:text"`
	Attributes           datatypes.JSONSlice[NFTAttribute] `json:"attributes"`
	TransactionHash      string                            `json:"transaction_hash"       gorm:"type:varchar(80);not null;index"`
	TokenID              *string                           `json:"token_id,omitempty"     gorm:"type:varchar(128)"`
	Rarity               string                            `json:"rarity"                 gorm:"type:varchar(16);not null"`
	MintedTo             string                            `json:"minted_to"              gorm:"type:varchar(64)"`
	CreatedAt            time.Time                         `json:"created_at"`

	ExerciseCompletion ExerciseCompletion `json:"-" gorm:"foreignKey:ExerciseCompletionID;references:ID"`
}

// TableName returns the database table name for NFT.
func (NFT) TableName() string { return "nfts" }
