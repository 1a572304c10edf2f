package ir

// Warning codes attached to a ResourceInfo. Warnings never abort an estimate.
const (
	WarnNoViableFactory       = "no_viable_factory"
	WarnDecoderOutOfRange     = "decoder_out_of_range"
	WarnPrecisionExhausted    = "precision_exhausted"
	WarnSynthesisNotConverged = "synthesis_not_converged"
)

// Warning is a recovered condition reported alongside a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecoderInfo reports classical decoder cost at the chosen distance.
type DecoderInfo struct {
	// TotalEnergy in joules over the whole computation.
	TotalEnergy float64 `json:"total_energy"`
	// Power in watts across all logical qubits.
	Power float64 `json:"power"`
	// Area in mm² across all logical qubits.
	Area float64 `json:"area"`
	// MaxDecodableDistance is the largest distance the decoder keeps pace with.
	MaxDecodableDistance int `json:"max_decodable_distance"`
}

// ResourceInfo is the result of one estimate.
type ResourceInfo struct {
	RunToken string `json:"run_token,omitempty"`
	Seq      int64  `json:"seq,omitempty"`

	Program      string       `json:"program"`
	Hardware     string       `json:"hardware"`
	Optimization Optimization `json:"optimization"`

	CodeDistance          int     `json:"code_distance"`
	LogicalErrorRate      float64 `json:"logical_error_rate"`
	LogicalErrorRateExact string  `json:"logical_error_rate_exact,omitempty"`

	NLogicalQubits        int `json:"n_logical_qubits"`
	PhysicalQubits        int `json:"physical_qubits"`
	FactoryPhysicalQubits int `json:"factory_physical_qubits"`
	TotalPhysicalQubits   int `json:"total_physical_qubits"`

	TotalCycles int     `json:"total_cycles"`
	TotalTime   float64 `json:"total_time"`
	NShots      int     `json:"n_shots"`

	FactoryName      string     `json:"factory_name,omitempty"`
	FactoryFootprint *Footprint `json:"factory_footprint,omitempty"`
	NFactories       int        `json:"n_factories"`

	NTGates            int     `json:"n_t_gates"`
	NRotations         int     `json:"n_rotations"`
	NTPerRotation      int     `json:"n_t_per_rotation"`
	SynthesisTolerance float64 `json:"synthesis_tolerance"`
	SpaceTimeVolume    int     `json:"space_time_volume"`

	Decoder  *DecoderInfo `json:"decoder,omitempty"`
	Warnings []Warning    `json:"warnings,omitempty"`
}

// NullResult is the sentinel returned when no factory and distance
// combination fits the modeled regime.
func NullResult(program string, mode Optimization, w Warning) ResourceInfo {
	return ResourceInfo{
		Program:          program,
		Optimization:     mode,
		CodeDistance:     -1,
		LogicalErrorRate: 1.0,
		Warnings:         []Warning{w},
	}
}

// IsNull reports whether r is the null sentinel.
func (r ResourceInfo) IsNull() bool {
	return r.CodeDistance == -1
}

// HasWarning reports whether a warning with the given code is attached.
func (r ResourceInfo) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
