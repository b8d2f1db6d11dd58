package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
)

func TestPostProcessDevices(t *testing.T) {
	c := newTestCascade()

	t.Run("all devices phrase wins over absence", func(t *testing.T) {
		rec := c.PostProcess(Record{}, "survey works on all devices")
		assert.Equal(t, "all devices", rec.Get(alias.FieldDevices))
	})

	t.Run("all word rewrites captured value", func(t *testing.T) {
		rec := c.PostProcess(Record{alias.FieldDevices: "ALL of them"}, "some text")
		assert.Equal(t, "all devices", rec.Get(alias.FieldDevices))
	})

	t.Run("keyword scan as last resort", func(t *testing.T) {
		rec := c.PostProcess(Record{}, "respondents join on mobile or desktop")
		assert.Equal(t, "desktop & mobile", rec.Get(alias.FieldDevices))
	})

	t.Run("multiline value truncates", func(t *testing.T) {
		rec := c.PostProcess(Record{alias.FieldDevices: "desktop\nextra noise"}, "x")
		assert.Equal(t, "desktop", rec.Get(alias.FieldDevices))
	})
}

func TestPostProcessNAtPrice(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{alias.FieldN: "500 @ $2.50"}, "x")
	assert.Equal(t, "500", rec.Get(alias.FieldN))
	assert.Equal(t, "$2.50", rec.Get(alias.FieldRequestedCPI))
}

func TestPostProcessScalarTruncation(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{alias.FieldLOI: "15\nplease confirm feasibility"}, "x")
	assert.Equal(t, "15", rec.Get(alias.FieldLOI))
}

func TestPostProcessDigitlessIRDropped(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{alias.FieldIR: "IR"}, "x")
	assert.False(t, rec.Has(alias.FieldIR))
}

func TestPostProcessLOIFromProse(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{}, "the survey takes about 12 minutes to complete")
	assert.Equal(t, "12", rec.Get(alias.FieldLOI))

	rec = c.PostProcess(Record{}, "interview runs 10 - 15 mins")
	assert.Equal(t, "10 - 15", rec.Get(alias.FieldLOI))
}

func TestPostProcessNoQuota(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{}, "there are no quotas on this one")
	assert.Equal(t, "no quotas", rec.Get(alias.FieldQuotas))
}

func TestPostProcessDecisionMakerFields(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{}, "targeting IT decision makers in the US")
	assert.Equal(t, "b2b", rec.Get(alias.FieldDMType))
	assert.Equal(t, "yes", rec.Get(alias.FieldDecisionMaker))

	rec = c.PostProcess(Record{}, "gen pop, nationally representative")
	assert.Equal(t, "b2c", rec.Get(alias.FieldDMType))
	assert.Equal(t, "no", rec.Get(alias.FieldDecisionMaker))
}

func TestPostProcessIndustriesWide(t *testing.T) {
	c := newTestCascade()

	text := "Industry: healthcare, finance and insurance\nThanks,\nPriya"
	rec := c.PostProcess(Record{alias.FieldIndustries: "healthcare"}, text)
	assert.Equal(t, "healthcare, finance and insurance", rec.Get(alias.FieldIndustries))
}

func TestPostProcessIndustriesWideStopsAtNextField(t *testing.T) {
	c := newTestCascade()

	text := "Industry: retail and hospitality LOI: 10"
	rec := c.PostProcess(Record{}, text)
	assert.Equal(t, "retail and hospitality", rec.Get(alias.FieldIndustries))
}

func TestPostProcessAcuityOverride(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{alias.FieldClientName: "someone"}, "forwarded from Acuity team")
	assert.Equal(t, "acuity", rec.Get(alias.FieldClientName))
}

func TestPostProcessFiltersNonCanonical(t *testing.T) {
	c := newTestCascade()

	rec := c.PostProcess(Record{
		alias.FieldMarket: "USA",
		"random":          "junk",
		alias.FieldLOI:    "null",
	}, "x")

	assert.Equal(t, "usa", rec.Get(alias.FieldMarket), "values are lowercased")
	assert.False(t, rec.Has("random"))
	assert.False(t, rec.Has(alias.FieldLOI), "literal null is dropped")
}
