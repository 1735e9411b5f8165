package clock

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/docflow/internal/config"
)

func provideClock(cfg config.Config) (Clock, error) {
	name := strings.TrimSpace(cfg.Numbering.TimeZone)
	if name == "" {
		return NewSystemClock(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load numbering time zone %q: %w", name, err)
	}
	return NewSystemClock(loc), nil
}
