package image

// Named anomaly strings for (*Image).AddAnomaly: non-fatal policy
// findings about otherwise well-formed input, distinct from the ad hoc
// warnings parsers record via AddWarning. A warning is a recoverable
// parse issue; an anomaly is a policy observation.
const (
	// AnoApertureSynthesized is recorded when a net references an
	// aperture code with no definition and the parser synthesizes a
	// small fallback circle in its place.
	AnoApertureSynthesized = "aperture undefined, synthesized fallback circle"

	// AnoStepAndRepeatFlattened is recorded when a step-and-repeat
	// block repeats more than once, so the literal net count this
	// image carries is larger than what was written: flattening is
	// eager, not lazy instancing.
	AnoStepAndRepeatFlattened = "step-and-repeat block flattened into literal nets"
)
