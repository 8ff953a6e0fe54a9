package id

import (
	"time"

	fid "github.com/amterp/flexid"
	"github.com/google/uuid"
)

var generator *fid.Generator

func init() {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	config := fid.NewConfig().
		WithEpoch(epoch).
		WithTickSize(10 * time.Millisecond).
		WithNumRandomChars(3)

	generator = fid.MustNewGenerator(config)
}

// Generate returns a new unique memory ID.
func Generate() string {
	return generator.MustGenerate()
}

// UploadName returns a random file name for an upload with the given
// extension (without the dot).
func UploadName(ext string) string {
	return uuid.NewString() + "." + ext
}
