package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	// Bonus rule overrides, rates in percent. The defaults are the product
	// constants; overriding them is meant for staging experiments only.
	Tier1RatePercent int64 `env:"TIER1_RATE_PERCENT" envDefault:"10"`
	Tier2RatePercent int64 `env:"TIER2_RATE_PERCENT" envDefault:"2"`
	PointsPerLevel   int64 `env:"POINTS_PER_LEVEL" envDefault:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
