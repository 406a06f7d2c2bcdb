package vntext_test

import (
	"testing"

	"github.com/camly/storefront/internal/vntext"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bánh Sinh Nhật", "banh sinh nhat"},
		{"Đặc Biệt", "dac biet"},
		{"banh", "banh"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, vntext.Fold(tt.in), tt.in)
	}
}

func TestHasDiacritics(t *testing.T) {
	assert.True(t, vntext.HasDiacritics("bành"))
	assert.True(t, vntext.HasDiacritics("Đà Lạt"))
	assert.False(t, vntext.HasDiacritics("banh kem"))
	assert.False(t, vntext.HasDiacritics("BANH"), "case alone is not a diacritic")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sinh-nhat", vntext.Slugify("Sinh Nhật"))
	assert.Equal(t, "banh-kem-20x20", vntext.Slugify("Bánh Kem 20x20"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"bánh", "kem", "20x20"}, vntext.Tokenize("Bánh Kem, 20x20!"))
	assert.Empty(t, vntext.Tokenize("  --  "))
}

func TestCollatorNumericOrdering(t *testing.T) {
	assert.Negative(t, vntext.Compare("Bánh 2", "Bánh 10"))
	assert.Negative(t, vntext.Compare("Bánh Bắp", "Bánh Chuối"))
}
