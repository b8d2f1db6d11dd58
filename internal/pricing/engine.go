package pricing

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pankajverma010101-svg/predict-cpi/internal/alias"
	"github.com/pankajverma010101-svg/predict-cpi/internal/country"
	"github.com/pankajverma010101-svg/predict-cpi/internal/values"
)

// StatusOK is the status of every successful resolution.
const StatusOK = "ok"

// Engine is the resolution state machine over business type and client. All
// tables are loaded once at construction and never mutated, so a single
// Engine serves concurrent requests without locking.
type Engine struct {
	general   RuleTable
	acuityB2B RuleTable
	acuityB2C RuleTable
	clients   ClientRules
	consumer  *ConsumerTable
	withAsk   *Model
	noAsk     *Model
}

// Tables bundles everything an Engine resolves against. Any table may be nil;
// the branches that need it then fail with their no-rows/no-match errors.
type Tables struct {
	General   RuleTable
	AcuityB2B RuleTable
	AcuityB2C RuleTable
	Clients   ClientRules
	Consumer  *ConsumerTable
	WithAsk   *Model
	NoAsk     *Model
}

// NewEngine builds an Engine over loaded tables.
func NewEngine(t Tables) *Engine {
	return &Engine{
		general:   t.General,
		acuityB2B: t.AcuityB2B,
		acuityB2C: t.AcuityB2C,
		clients:   t.Clients,
		consumer:  t.Consumer,
		withAsk:   t.WithAsk,
		noAsk:     t.NoAsk,
	}
}

// Resolve runs the pricing state machine for one request.
func (e *Engine) Resolve(req Request) (Response, error) {
	for field, v := range map[string]string{
		"business_type": req.BusinessType,
		"market":        req.Market,
		"ir":            req.IR,
		"loi":           req.LOI,
	} {
		if strings.TrimSpace(v) == "" {
			return Response{}, eris.Wrapf(ErrValidation, "field %s", field)
		}
	}

	loi, err := values.ParseRange(req.LOI)
	if err != nil {
		return Response{}, eris.Wrapf(ErrInvalidInput, "loi %q", req.LOI)
	}
	ir, err := values.ParseRange(req.IR)
	if err != nil {
		return Response{}, eris.Wrapf(ErrInvalidInput, "ir %q", req.IR)
	}

	isB2B := strings.EqualFold(strings.TrimSpace(req.BusinessType), "b2b")
	client := strings.ToLower(strings.TrimSpace(req.ClientName))
	generic := client == "" || client == "generic"

	switch {
	case client == "acuity":
		return e.resolveAcuity(req, isB2B, loi, ir)
	case isB2B && !generic:
		return e.resolveClient(client, req)
	case isB2B:
		return e.resolveGeneralB2B(req, loi, ir)
	default:
		return e.resolveConsumer(req, loi, ir)
	}
}

// resolveAcuity prices against the partner's own rate cards, scoped to the
// region the market text resolves to.
func (e *Engine) resolveAcuity(req Request, isB2B bool, loi, ir values.Range) (Response, error) {
	table, coverSrc, nearSrc := e.acuityB2C, SourceAcuityB2CCover, SourceAcuityB2CNearest
	if isB2B {
		table, coverSrc, nearSrc = e.acuityB2B, SourceAcuityB2BCover, SourceAcuityB2BNearest
	}

	region := country.FindRegion(req.Market)
	rule, covered, err := match(table[region], loi, ir)
	if err != nil {
		return Response{}, eris.Wrapf(err, "acuity region %s", region)
	}
	return respond(rule, covered, coverSrc, nearSrc), nil
}

// resolveClient prices a named non-partner client from its flat rule.
func (e *Engine) resolveClient(client string, req Request) (Response, error) {
	rule, ok := e.clients.Lookup(client)
	if !ok {
		return Response{}, eris.Wrapf(ErrNoMatch, "client %q", client)
	}
	return Response{
		Status:         StatusOK,
		PredictedPrice: rule.Price(req.Director, req.CLevel),
		Source:         SourceClientRule,
	}, nil
}

// resolveGeneralB2B prices against the general table keyed by normalized
// country, with the INTERNATIONAL bucket as the named fallback for countries
// the table does not carry.
func (e *Engine) resolveGeneralB2B(req Request, loi, ir values.Range) (Response, error) {
	key := country.Normalize(req.Market)
	rules, ok := e.general[key]
	if !ok {
		rules, ok = e.general[MarketInternational]
		if !ok {
			return Response{}, eris.Wrapf(ErrNoRows, "market %q", req.Market)
		}
		zap.L().Debug("pricing: market fell back to international bucket",
			zap.String("market", req.Market))
	}
	rule, covered, err := match(rules, loi, ir)
	if err != nil {
		return Response{}, eris.Wrapf(err, "market %q", req.Market)
	}
	return respond(rule, covered, SourceB2BCover, SourceB2BNearest), nil
}

// resolveConsumer prices a consumer request: the upper bound of each parsed
// range buckets upward, then exact lookup, nearest cell in the same market,
// and finally regression inference.
func (e *Engine) resolveConsumer(req Request, loi, ir values.Range) (Response, error) {
	market := MarketInternational
	if country.Normalize(req.Market) == MarketUSA {
		market = MarketUSA
	}

	if e.consumer != nil {
		irB, loiB := e.consumer.Bucket(ir.Max, loi.Max)

		if price, ok := e.consumer.Lookup(market, irB, loiB); ok {
			return Response{
				Status:         StatusOK,
				PredictedPrice: price,
				Source:         SourceConsumerExact,
				MatchedRule:    cellRule(market, irB, loiB, price),
			}, nil
		}
		if price, key, ok := e.consumer.Nearest(market, irB, loiB); ok {
			return Response{
				Status:         StatusOK,
				PredictedPrice: price,
				Source:         SourceConsumerNearest,
				MatchedRule:    cellRule(key.Market, key.IR, key.LOI, price),
			}, nil
		}
	}

	return e.infer(req, market)
}

// infer is the last-resort regression path. The with-ask model variant is
// preferred when the request carries a parseable requested price.
func (e *Engine) infer(req Request, market string) (Response, error) {
	fields := make(map[string]string, len(req.Fields)+3)
	for k, v := range req.Fields {
		fields[k] = v
	}
	fields[alias.FieldMarket] = market
	fields[alias.FieldIR] = req.IR
	fields[alias.FieldLOI] = req.LOI

	hasAsk := false
	if _, err := values.Average(fields[alias.FieldRequestedCPI]); err == nil {
		hasAsk = true
	}

	model := e.noAsk
	if hasAsk && e.withAsk != nil {
		model = e.withAsk
	}
	if model == nil {
		return Response{}, eris.Wrapf(ErrNoMatch, "market %q", req.Market)
	}

	price := model.Predict(Features(fields, hasAsk))
	zap.L().Debug("pricing: resolved by model inference",
		zap.String("market", market), zap.Bool("with_ask", hasAsk))

	return Response{
		Status:         StatusOK,
		PredictedPrice: price,
		Source:         SourceModel,
	}, nil
}

func respond(rule Rule, covered bool, coverSrc, nearSrc Source) Response {
	src := nearSrc
	if covered {
		src = coverSrc
	}
	r := rule
	return Response{
		Status:         StatusOK,
		PredictedPrice: rule.Price,
		Source:         src,
		MatchedRule:    &r,
	}
}

// cellRule reports a consumer cell in rule shape for the response's
// matched_rule field.
func cellRule(market string, ir, loi int, price decimal.Decimal) *Rule {
	return &Rule{Market: market, LOIMin: loi, LOIMax: loi, IRMin: ir, IRMax: ir, Price: price}
}
