package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake-derived int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake-derived identifier in decimal string form,
// used as the primary key for record-style entities.
func UUID() string {
	return strconv.FormatInt(snowflakeNode.Generate().Int64(), 10)
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DateStr formats t as the canonical day string used across collections.
func DateStr(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockStr formats t as the canonical zero-padded 24h clock string.
func ClockStr(t time.Time) string {
	return t.Format("15:04")
}

// TimestampID returns a sortable snapshot identifier derived from t.
func TimestampID(t time.Time) string {
	return fmt.Sprintf("bk%s", t.UTC().Format("20060102T150405"))
}
