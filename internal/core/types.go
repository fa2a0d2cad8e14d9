package core

import "feedstockcore/pkg/domain"

type (
	OperationType       = domain.OperationType
	UploadOperationType = domain.UploadOperationType
	InputType           = domain.InputType
	TimingClass         = domain.TimingClass
	AmountClass         = domain.AmountClass
	NMgtPractice        = domain.NMgtPractice
	TillPractice        = domain.TillPractice
	CanonicalOperation  = domain.CanonicalOperation
	FieldOperation      = domain.FieldOperation
	FieldSeason         = domain.FieldSeason
	AcreageRecord       = domain.AcreageRecord
	CoverageRecord      = domain.CoverageRecord
	FieldLocation       = domain.FieldLocation
	VerifiedField       = domain.VerifiedField
	SplitFieldRecord    = domain.SplitFieldRecord
	DecisionMatrixRow   = domain.DecisionMatrixRow
	BulkUploadRow       = domain.BulkUploadRow
	ExclusionRecord     = domain.ExclusionRecord
	ExclusionCase       = domain.ExclusionCase
	Attestation         = domain.Attestation
	AttestationKind     = domain.AttestationKind
	ProductBreakdown    = domain.ProductBreakdown
	ReportKey           = domain.ReportKey
	ReportType          = domain.ReportType
)

const (
	OperationHarvest     = domain.OperationHarvest
	OperationPlanting    = domain.OperationPlanting
	OperationApplication = domain.OperationApplication
	OperationTillage     = domain.OperationTillage
	OperationFuel        = domain.OperationFuel
)

const (
	InputFertilizer  = domain.InputFertilizer
	InputSeed        = domain.InputSeed
	InputHerbicide   = domain.InputHerbicide
	InputFungicide   = domain.InputFungicide
	InputInsecticide = domain.InputInsecticide
	InputPesticide   = domain.InputPesticide
	InputEEF         = domain.InputEEF
)

const (
	TimingFall   = domain.TimingFall
	TimingSpring = domain.TimingSpring
	TimingFlag   = domain.TimingFlag
	TimingNo4R   = domain.TimingNo4R
	Timing4RMet  = domain.Timing4RMet
)

const (
	Amount4R   = domain.Amount4R
	AmountNo4R = domain.AmountNo4R
)

const (
	NMgt4R  = domain.NMgt4R
	NMgtEEF = domain.NMgtEEF
	NMgtBAU = domain.NMgtBAU
)

const MajorCropSplitField = domain.MajorCropSplitField

const (
	TillConventional = domain.TillConventional
	TillReduced      = domain.TillReduced
	TillNone         = domain.TillNone
)

const (
	ExclusionMissingData       = domain.ExclusionMissingData
	ExclusionSplitField        = domain.ExclusionSplitField
	ExclusionRefAcreageNonCorn = domain.ExclusionRefAcreageNonCorn
	ExclusionManual            = domain.ExclusionManual
)
