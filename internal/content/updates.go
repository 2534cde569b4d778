package content

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/svmesh/svmesh-web/internal/config"
)

// LoadUpdates lists the updates category and parses every file it can. A
// file that fails to fetch or parse is logged and skipped; only a failed
// listing fails the whole call. Posts come back in listing order.
func (c *Client) LoadUpdates(ctx context.Context) ([]UpdatePost, error) {
	files, err := c.ListFiles(ctx, config.CategoryUpdates)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load update files")
		return nil, err
	}

	results := make([]*UpdatePost, len(files))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, name := range files {
		g.Go(func() error {
			post, err := c.loadUpdate(ctx, name)
			if err != nil {
				c.logger.Warn().Err(err).Str("file", name).Msg("Skipping update")
				return nil
			}
			results[i] = &post
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := make([]UpdatePost, 0, len(files))
	for _, p := range results {
		if p != nil {
			posts = append(posts, *p)
		}
	}

	c.logger.Debug().
		Int("listed", len(files)).
		Int("loaded", len(posts)).
		Msg("Loaded updates")

	return posts, nil
}

func (c *Client) loadUpdate(ctx context.Context, filename string) (UpdatePost, error) {
	raw, err := c.FetchFile(ctx, config.CategoryUpdates, filename)
	if err != nil {
		return UpdatePost{}, err
	}
	return ParseUpdate(raw, SlugFromFilename(filename))
}
