package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lifestyle/internal/flagx"
	"github.com/dmitrijs2005/lifestyle/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "1h" strings and integer nanoseconds; pointers distinguish "absent" from
// an explicit false.
type JsonConfig struct {
	Env                          string          `json:"env"`
	HTTPAddr                     string          `json:"http_addr"`
	BasePath                     string          `json:"base_path"`
	OpsAddr                      string          `json:"ops_addr"`
	GRPCHealthAddr               string          `json:"grpc_health_addr"`
	RequestTimeout               *timex.Duration `json:"request_timeout"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	SecureCookies                *bool           `json:"secure_cookies"`
	RevokeOnLogout               *bool           `json:"revoke_on_logout"`
	StrictPasswords              *bool           `json:"strict_passwords"`
	RedisURL                     string          `json:"redis_url"`
	JanitorPeriod                *timex.Duration `json:"janitor_period"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config into config. Keys missing
// from the file keep their current values. An unreadable file or invalid
// JSON panics: the process cannot start with a half-applied config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.Env, c.Env)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.BasePath, c.BasePath)
	setString(&config.OpsAddr, c.OpsAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.RevokeOnLogout != nil {
		config.RevokeOnLogout = *c.RevokeOnLogout
	}
	if c.StrictPasswords != nil {
		config.StrictPasswords = *c.StrictPasswords
	}
	setString(&config.RedisURL, c.RedisURL)
	setDuration(&config.JanitorPeriod, c.JanitorPeriod)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
