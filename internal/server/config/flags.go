package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address for the websocket feed (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-m string   bootstrap admin email
//	-reg bool   auto-register unknown emails on login (use -reg=false)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string   events broker: none, kafka or amqp
//	-kb string  comma separated Kafka brokers
//	-kt string  Kafka topic
//	-qu string  AMQP URL
//	-qq string  AMQP queue
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-w", "-d", "-s", "-t", "-r", "-m", "-reg",
		"-u", "-p", "-b", "-g", "-e", "-x", "-kb", "-kt", "-qu", "-qq",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run HTTP feed server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.AdminEmail, "m", config.AdminEmail, "bootstrap admin email")
	fs.BoolVar(&config.AutoRegister, "reg", config.AutoRegister, "register unknown emails on login")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.EventsBroker, "x", config.EventsBroker, "events broker (none, kafka, amqp)")
	kafkaBrokers := fs.String("kb", strings.Join(config.KafkaBrokers, ","), "comma separated kafka brokers")
	fs.StringVar(&config.KafkaTopic, "kt", config.KafkaTopic, "kafka topic")
	fs.StringVar(&config.AMQPURL, "qu", config.AMQPURL, "AMQP URL")
	fs.StringVar(&config.AMQPQueue, "qq", config.AMQPQueue, "AMQP queue")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.KafkaBrokers = flagx.SplitList(*kafkaBrokers)
	config.AdminEmail = strings.ToLower(strings.TrimSpace(config.AdminEmail))
}
