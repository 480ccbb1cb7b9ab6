package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/betbot/pairmaker/pkg/secretstore"
)

// 把 .env 中的 EXCHANGE_KEY / EXCHANGE_SECRET 写入加密的 Badger 凭证库
func main() {
	var (
		inPath    = flag.String("in", ".env", "input .env file path")
		dbPath    = flag.String("badger", getenv("GOBET_SECRET_DB", "data/secrets.badger"), "badger secrets db path")
		secretKey = flag.String("secret-key", getenv("GOBET_SECRET_KEY", ""), "badger encryption key (32 bytes base64/hex)")
		show      = flag.Bool("show", false, "只检查库中是否已有凭证，不写入")
	)
	flag.Parse()

	keyBytes, err := secretstore.ParseKey(*secretKey)
	if err != nil {
		fatal(err)
	}
	if keyBytes == nil {
		fatal(errors.New("secret key is required: set GOBET_SECRET_KEY or pass -secret-key"))
	}

	ss, err := secretstore.Open(secretstore.OpenOptions{Path: *dbPath, EncryptionKey: keyBytes, ReadOnly: *show})
	if err != nil {
		fatal(err)
	}
	defer ss.Close()

	if *show {
		key, secret, err := ss.Credentials()
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "key=%s secret=%s\n", mask(key), mask(secret))
		return
	}

	kv, err := godotenv.Read(*inPath)
	if err != nil {
		fatal(errors.Wrapf(err, "read %s", *inPath))
	}
	key, secret := strings.TrimSpace(kv["EXCHANGE_KEY"]), strings.TrimSpace(kv["EXCHANGE_SECRET"])
	if key == "" || secret == "" {
		fatal(errors.Errorf("%s 中缺少 EXCHANGE_KEY 或 EXCHANGE_SECRET", *inPath))
	}
	if err := ss.SetCredentials(key, secret); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "已写入交易所凭证到 badger：%s（key=%s）\n", *dbPath, mask(key))
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	if len(s) <= 6 {
		return "***"
	}
	return s[:4] + "..."
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
