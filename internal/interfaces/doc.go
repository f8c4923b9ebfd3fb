// Package interfaces pins the seams between packages with compile-time
// checks. It has no runtime code.
//
// The crawl path is split along these interfaces:
//
//   - crawler.Session: page requests and downloads (session.Session)
//   - crawler.VisitedStore: save-progress markers (visited.Repository)
//   - crawler.Library: registration of downloaded media (library.Service over media.Repository)
//   - crawler.Prompter: operator decisions on extraction failures (crawler.ConsolePrompter)
//   - crawl.Recorder: run history (audit.Service)
//
// Background work and the HTTP API depend on crawl.Service and tasks.Client
// only through small interfaces declared next to their consumers
// (tasks.CrawlRunner, scheduler.CrawlRunner, http.CrawlEnqueuer and friends),
// so tests substitute fakes without a database or network.
//
// # Adding an action type
//
//  1. Add the kind to internal/template/types.go and its attribute checks to
//     buildAction in internal/template/loader.go.
//  2. Handle the kind in the action switch of internal/crawler/pipeline.go and
//     count it in crawler.Stats.
//  3. Cover both with a loader case and an httptest-backed crawler test.
package interfaces
