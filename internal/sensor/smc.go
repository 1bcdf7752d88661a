package sensor

import (
	"context"
	"regexp"
	"sync"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"codeberg.org/mutker/hotctl/internal/smc"
)

// fanRPM matches the actual-speed key of each fan.
var fanRPM = regexp.MustCompile(`^F[0-9]Ac$`)

// ClassifyKey maps a controller key to a reading kind by its first
// character. ok is false for keys that are not sensors.
func ClassifyKey(key smc.FourCC) (Kind, bool) {
	switch key.Prefix() {
	case 'T':
		return KindThermal, true
	case 'V':
		return KindVoltage, true
	case 'I':
		return KindCurrent, true
	case 'F':
		if fanRPM.MatchString(key.String()) {
			return KindFan, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// SMCProvider reads the management controller. The connection is opened on
// first use and reopened after a failed enumeration.
type SMCProvider struct {
	mu     sync.Mutex
	open   func() (smc.KeyReader, error)
	reader smc.KeyReader
	log    logger.Logger
}

// NewSMC returns a provider backed by the platform controller.
func NewSMC(log logger.Logger) *SMCProvider {
	return NewSMCWithOpener(smc.Open, log)
}

// NewSMCWithOpener returns a provider that obtains its connection from open.
func NewSMCWithOpener(open func() (smc.KeyReader, error), log logger.Logger) *SMCProvider {
	return &SMCProvider{
		open: open,
		log:  log.With("smc"),
	}
}

func (p *SMCProvider) Name() string   { return "smc" }
func (p *SMCProvider) Source() Source { return SourceSMC }

func (p *SMCProvider) Readings(ctx context.Context) ([]Reading, error) {
	errFactory := errors.New()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errFactory.Wrap(ErrReadFailed, err)
	}

	if p.reader == nil {
		reader, err := p.open()
		if err != nil {
			return nil, errFactory.Wrap(ErrUnavailable, err)
		}
		p.reader = reader
	}

	filter := func(key smc.FourCC) bool {
		_, ok := ClassifyKey(key)
		return ok
	}

	entries, err := smc.ReadAll(p.reader, filter, p.log)
	if err != nil {
		_ = p.reader.Close()
		p.reader = nil
		return nil, errFactory.Wrap(ErrReadFailed, err)
	}

	readings := make([]Reading, 0, len(entries))
	for _, e := range entries {
		value, ok := e.Value.Real()
		if !ok {
			if n, numeric := e.Value.Float64(); numeric {
				p.log.Debug().
					Str("key", e.Key.String()).
					Str("type", e.Type.String()).
					Float64("value", n).
					Msg("Skipping integer key")
			}
			continue
		}

		kind, _ := ClassifyKey(e.Key)
		readings = append(readings, Reading{
			Name:   e.Key.String(),
			Value:  value,
			Kind:   kind,
			Source: SourceSMC,
		})
	}

	return readings, nil
}

func (p *SMCProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reader == nil {
		return nil
	}

	err := p.reader.Close()
	p.reader = nil

	return err
}
