package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/flagx"
	"github.com/dmitrijs2005/lifestyle/internal/timex"
)

var (
	serverFlags = []string{
		"-a", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e",
		"-env", "-base", "-ops", "-health", "-timeout", "-secure", "-revoke", "-redis",
		"-strict-passwords",
	}
	serverBoolFlags = []string{"-secure", "-revoke", "-strict-passwords"}
)

// parseFlags overlays command-line flags.
//
//	-a string     HTTP bind address (":8080")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-u/-p string  S3 root user / password
//	-b string     S3 bucket
//	-g string     S3 region
//	-e string     S3 base endpoint
//	-env string   local | dev | prod
//	-base string  API base path ("/api")
//	-ops string   ops listener (metrics, health)
//	-health string gRPC health listener
//	-timeout dur  per-request timeout
//	-secure       Secure attribute on the refresh cookie
//	-revoke       denylist refresh tokens on logout
//	-redis string Redis URL for the denylist
//	-strict-passwords  enforce password strength rules
//
// Only the flags above are taken from os.Args; other components parse the rest.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags, serverBoolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.Env, "env", config.Env, "environment: local, dev or prod")
	fs.StringVar(&config.BasePath, "base", config.BasePath, "API base path")
	fs.StringVar(&config.OpsAddr, "ops", config.OpsAddr, "ops listener address")
	fs.StringVar(&config.GRPCHealthAddr, "health", config.GRPCHealthAddr, "gRPC health listener address")
	fs.DurationVar(&config.RequestTimeout, "timeout", config.RequestTimeout, "per-request timeout")
	fs.BoolVar(&config.SecureCookies, "secure", config.SecureCookies, "secure refresh cookie")
	fs.BoolVar(&config.RevokeOnLogout, "revoke", config.RevokeOnLogout, "revoke refresh token on logout")
	fs.BoolVar(&config.StrictPasswords, "strict-passwords", config.StrictPasswords, "enforce password strength rules")
	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL for the token denylist")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
