package forecast

// Config holds the model tuning knobs. Defaults match the values the app
// has always shipped with; deployments can override them via the forecast
// TOML file.
type Config struct {
	Alpha               float64 `toml:"alpha"`
	LinearWeight        float64 `toml:"linear_weight"`
	ExponentialWeight   float64 `toml:"exponential_weight"`
	MovingAverageWeight float64 `toml:"moving_average_weight"`
	MovingAverageWindow int     `toml:"moving_average_window"`
}

// DefaultConfig returns the standard tuning values.
func DefaultConfig() Config {
	return Config{
		Alpha:               0.3,
		LinearWeight:        0.5,
		ExponentialWeight:   0.3,
		MovingAverageWeight: 0.2,
		MovingAverageWindow: 3,
	}
}
