package advanced

// EnhancedSignalScore is the weighted multi-factor quality gate applied to a
// candidate signal before it can fire.
type EnhancedSignalScore struct {
	TechnicalScore        float64 `json:"technical_score"`
	StructureScore        float64 `json:"structure_score"`
	VolumeScore           float64 `json:"volume_score"`
	TimingScore           float64 `json:"timing_score"`
	AlignmentScore        float64 `json:"alignment_score"`
	TotalScore            float64 `json:"total_score"`
	Confidence            float64 `json:"confidence"`
	PassesThreshold       bool    `json:"passes_threshold"`
	RequiredConfirmations int     `json:"required_confirmations"`
	MetConfirmations      int     `json:"met_confirmations"`
}

// Factor weights for the total score.
const (
	weightTechnical = 0.25
	weightStructure = 0.20
	weightVolume    = 0.20
	weightTiming    = 0.15
	weightAlignment = 0.20
)

// CalculateEnhancedSignalScore scores a candidate signal across five weighted
// factors and counts six boolean confirmations (the five factors plus the
// volatility check). The gate passes when at least four confirmations are met
// and the weighted total reaches 65.
func CalculateEnhancedSignalScore(
	technicalSignal float64,
	structureConfirmed bool,
	volumeConfirmed bool,
	sessionValid bool,
	mtfAligned bool,
	volatilityValid bool,
) EnhancedSignalScore {
	technicalScore := technicalSignal * 100
	if technicalScore > 100 {
		technicalScore = 100
	}
	if technicalScore < 0 {
		technicalScore = 0
	}

	structureScore := boolScore(structureConfirmed)
	volumeScore := boolScore(volumeConfirmed)
	timingScore := boolScore(sessionValid)
	alignmentScore := boolScore(mtfAligned)

	totalScore := technicalScore*weightTechnical +
		structureScore*weightStructure +
		volumeScore*weightVolume +
		timingScore*weightTiming +
		alignmentScore*weightAlignment

	confirmations := []bool{
		technicalScore > 60,
		structureConfirmed,
		volumeConfirmed,
		sessionValid,
		mtfAligned,
		volatilityValid,
	}
	met := 0
	for _, c := range confirmations {
		if c {
			met++
		}
	}
	const required = 4

	return EnhancedSignalScore{
		TechnicalScore:        technicalScore,
		StructureScore:        structureScore,
		VolumeScore:           volumeScore,
		TimingScore:           timingScore,
		AlignmentScore:        alignmentScore,
		TotalScore:            totalScore,
		Confidence:            totalScore / 100,
		PassesThreshold:       met >= required && totalScore >= 65,
		RequiredConfirmations: required,
		MetConfirmations:      met,
	}
}

func boolScore(b bool) float64 {
	if b {
		return 100
	}
	return 0
}
