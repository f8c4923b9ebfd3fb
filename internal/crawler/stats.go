package crawler

import "fmt"

// Stats counts what a crawl run did so far.
type Stats struct {
	PagesFetched     int `json:"pages_fetched"`
	PagesSkipped     int `json:"pages_skipped"`
	PagesFailed      int `json:"pages_failed"`
	Matches          int `json:"matches"`
	Downloads        int `json:"downloads"`
	DownloadFailures int `json:"download_failures"`
	Extracted        int `json:"extracted"`
	ExtractFailures  int `json:"extract_failures"`
	FilesDeleted     int `json:"files_deleted"`
	Registered       int `json:"registered"`
	RegisterFailures int `json:"register_failures"`
	Logins           int `json:"logins"`
	SkippedActions   int `json:"skipped_actions"`
}

func (s Stats) String() string {
	return fmt.Sprintf("pages %d (skipped %d), matches %d, downloads %d (failed %d), registered %d",
		s.PagesFetched, s.PagesSkipped, s.Matches, s.Downloads, s.DownloadFailures, s.Registered)
}

// Stats returns a snapshot of the run counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Crawler) record(update func(s *Stats)) {
	c.mu.Lock()
	update(&c.stats)
	snapshot := c.stats
	c.mu.Unlock()

	if c.opts.Progress != nil {
		c.opts.Progress(snapshot)
	}
}
