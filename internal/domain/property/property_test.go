package property

import (
	"testing"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttributes() Attributes {
	return Attributes{
		Owner:            Owner{Name: "Ama Mensah", Phone: "0240000000", Address: "12 Ring Road"},
		HouseNumber:      "H-12",
		Structure:        "Modern",
		Use:              "Residential",
		RoomCount:        3,
		OldBill:          dec("20"),
		Arrears:          decimal.Zero,
		PreviousPayments: dec("100"),
	}
}

func TestNewProperty(t *testing.T) {
	t.Run("derives bill figures", func(t *testing.T) {
		p, err := NewProperty(validAttributes(), dec("50.00"))
		require.NoError(t, err)
		require.NotNil(t, p)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 1, p.GetVersion())
		assert.Equal(t, "150.00", p.CurrentBill.StringFixed(2))
		assert.Equal(t, "70.00", p.AmountPayable.StringFixed(2))
		assert.True(t, p.IsConsistent())
		assert.Equal(t, shared.EntityKindProperty, p.Ref().Kind)
		assert.Equal(t, p.ID, p.Ref().ID)
	})

	t.Run("rejects missing structure", func(t *testing.T) {
		attrs := validAttributes()
		attrs.Structure = ""
		_, err := NewProperty(attrs, dec("50"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects missing owner", func(t *testing.T) {
		attrs := validAttributes()
		attrs.Owner.Name = " "
		_, err := NewProperty(attrs, dec("50"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects negative arrears", func(t *testing.T) {
		attrs := validAttributes()
		attrs.Arrears = dec("-1")
		_, err := NewProperty(attrs, dec("50"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Arrears")
	})
}

func TestProperty_Update(t *testing.T) {
	p, err := NewProperty(validAttributes(), dec("50"))
	require.NoError(t, err)
	createdAt := p.CreatedAt

	attrs := validAttributes()
	attrs.RoomCount = 4
	attrs.Arrears = dec("10")
	require.NoError(t, p.Update(attrs, dec("50")))

	assert.Equal(t, 4, p.RoomCount)
	assert.Equal(t, "200.00", p.CurrentBill.StringFixed(2))
	assert.Equal(t, "130.00", p.AmountPayable.StringFixed(2))
	assert.Equal(t, 2, p.GetVersion())
	assert.Equal(t, createdAt, p.CreatedAt)
	assert.True(t, p.IsConsistent())

	t.Run("failed update leaves version unchanged", func(t *testing.T) {
		bad := validAttributes()
		bad.RoomCount = 0
		require.Error(t, p.Update(bad, dec("50")))
		assert.Equal(t, 2, p.GetVersion())
	})
}

func TestProperty_IsConsistentDetectsDrift(t *testing.T) {
	p, err := NewProperty(validAttributes(), dec("50"))
	require.NoError(t, err)

	p.Arrears = dec("5")
	assert.False(t, p.IsConsistent())

	require.NoError(t, p.Recalculate(dec("50")))
	assert.True(t, p.IsConsistent())
	assert.Equal(t, "75.00", p.AmountPayable.StringFixed(2))
}

func TestProperty_Snapshot(t *testing.T) {
	p, err := NewProperty(validAttributes(), dec("50"))
	require.NoError(t, err)

	s := p.Snapshot()
	assert.Equal(t, p.ID, s.ID)
	assert.Equal(t, "Ama Mensah", s.Owner.Name)
	assert.Equal(t, "Modern", s.Structure)
	assert.True(t, s.AmountPayable.Equal(p.AmountPayable))
	assert.Equal(t, p.Version, s.Version)
}
