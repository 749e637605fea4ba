package discovery

import "os"

// ReadDevDir lists entry names under /dev, the default serial device scan
// root on POSIX hosts.
func ReadDevDir() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
