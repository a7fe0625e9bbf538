// Package template provides value templating for fixture responses.
// It supports substitution like {{vars.id}}, {{uuid}} and {{now}}.
//
// # Built-in Variables
//
// Time-related:
//   - {{now}} - Current time in RFC3339 format
//   - {{timestamp}} - Current Unix timestamp
//   - {{timestamp.iso}} - Current UTC time in RFC3339 with nanoseconds
//   - {{timestamp.unix_ms}} - Current Unix timestamp in milliseconds
//
// Random values:
//   - {{uuid}} - Random UUID v4
//   - {{uuid.short}} - First 8 characters of a random UUID
//   - {{random.int}} - Random integer 0-100
//   - {{random.int(min, max)}} - Random integer in range [min, max]
//   - {{random.float}} - Random float 0.0-1.0
//   - {{random.string(N)}} - Random N-character alphanumeric string
//   - {{faker.name}}, {{faker.firstName}}, {{faker.lastName}},
//     {{faker.email}}, {{faker.company}}, {{faker.word}}
//
// When the Context carries a seeded Rand, every random value is drawn from
// it and the output is reproducible.
//
// # Operation Variables
//
//   - {{vars.name}} - Operation variable; nested values use dots
//     ({{vars.input.tags.0}})
//   - {{args.name}} - Alias of vars
//   - {{operationName}} - Name of the dispatched operation
//
// # Functions
//
//   - {{upper(value)}} - Convert to uppercase
//   - {{lower(value)}} - Convert to lowercase
//   - {{default(value, "fallback")}} - Use fallback if value is empty
//   - {{sequence("name")}} - Auto-incrementing counter starting at 1
//   - {{sequence("name", start)}} - Counter starting at start
//
// Expressions the engine does not recognize are left in place.
//
// # Structured values
//
// Apply walks maps and slices decoded from YAML or JSON and processes every
// string. A string that consists of a single {{vars.*}} expression is
// replaced by the variable's value itself, so numbers, booleans and objects
// keep their type.
package template
