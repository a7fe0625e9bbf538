package template

import (
	"strconv"
	"strings"
	"time"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	fakerFirstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Edward", "Fiona"}
	fakerLastNames  = []string{"Smith", "Doe", "Johnson", "Williams", "Brown", "Davis", "Miller", "Wilson"}
	fakerDomains    = []string{"example.com", "test.com", "mock.io", "demo.org"}
	fakerCompanies  = []string{"Acme Corp", "Globex Inc", "Initech", "Umbrella Corp", "Stark Industries"}
	fakerWords      = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "theta", "lambda", "sigma", "omega"}
)

func funcNow() string {
	return time.Now().Format(time.RFC3339)
}

func funcTimestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// funcRandomInt returns a random integer between min and max (inclusive).
func funcRandomInt(ctx *Context, min, max int) string {
	if min > max {
		return ""
	}
	return strconv.Itoa(ctx.intN(max-min+1) + min)
}

func funcRandomFloat(ctx *Context) string {
	return strconv.FormatFloat(ctx.float64(), 'f', 6, 64)
}

func funcRandomString(ctx *Context, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphanumeric[ctx.intN(len(alphanumeric))])
	}
	return b.String()
}

func funcUpper(s string) string {
	return strings.ToUpper(s)
}

func funcLower(s string) string {
	return strings.ToLower(s)
}

// funcDefault returns value if non-empty, otherwise fallback.
func funcDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// resolveFaker returns sample data for faker.* expressions.
func resolveFaker(ctx *Context, kind string) (string, bool) {
	switch kind {
	case "name":
		return ctx.pick(fakerFirstNames) + " " + ctx.pick(fakerLastNames), true
	case "firstName":
		return ctx.pick(fakerFirstNames), true
	case "lastName":
		return ctx.pick(fakerLastNames), true
	case "email":
		return strings.ToLower(ctx.pick(fakerFirstNames)) + strconv.Itoa(ctx.intN(1000)) + "@" + ctx.pick(fakerDomains), true
	case "company":
		return ctx.pick(fakerCompanies), true
	case "word":
		return ctx.pick(fakerWords), true
	case "uuid":
		return ctx.uuid(), true
	default:
		return "", false
	}
}
