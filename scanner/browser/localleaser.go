package browser

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// LocalLeaser starts chrome processes on this host, each with its own port
// and temporary profile.
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	chromePath  string
	tmp         string
}

// NewLocalLeaser uses chromePath, or FindChrome when it is empty
func NewLocalLeaser(chromePath string) *LocalLeaser {
	chrome, tmp := FindChrome()
	if chromePath != "" {
		chrome = chromePath
	}
	return &LocalLeaser{
		browsers:   make(map[string]*gcd.Gcd),
		chromePath: chrome,
		tmp:        tmp,
	}
}

// Acquire starts a new browser and returns its debugging port
func (s *LocalLeaser) Acquire() (string, error) {
	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()

	profileDir, err := randProfile(s.tmp)
	if err != nil {
		return "", err
	}
	port := randPort()

	b.AddFlags(startupFlags)
	if err := b.StartProcess(s.chromePath, profileDir, port); err != nil {
		return "", errors.Wrapf(err, "starting %s", s.chromePath)
	}
	s.browserLock.Lock()
	s.browsers[port] = b
	s.browserLock.Unlock()

	log.Debug().Str("port", port).Str("profile", profileDir).Msg("started browser")
	return port, nil
}

// Count of running browsers
func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return exits the browser on port
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	defer s.browserLock.Unlock()

	if b, ok := s.browsers[port]; ok {
		delete(s.browsers, port)
		return b.ExitProcess()
	}

	return errors.New("not found")
}

// Cleanup exits every browser this leaser started and removes their profiles
func (s *LocalLeaser) Cleanup() (string, error) {
	s.browserLock.Lock()
	for port, b := range s.browsers {
		if err := b.ExitProcess(); err != nil {
			log.Warn().Err(err).Str("port", port).Msg("failed to exit browser")
		}
		delete(s.browsers, port)
	}
	s.browserLock.Unlock()

	if err := RemoveTmpContents(s.tmp); err != nil {
		return "", err
	}
	return "ok", nil
}
