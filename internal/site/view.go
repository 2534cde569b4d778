package site

import (
	"context"
	"sync"

	"github.com/svmesh/svmesh-web/internal/content"
)

// View is the content loaded while serving one request. It lives only as
// long as the request and is never shared between requests.
type View struct {
	ctx    context.Context
	client *content.Client

	once       sync.Once
	updates    []content.UpdatePost
	updatesErr error
}

func newView(ctx context.Context, client *content.Client) *View {
	return &View{ctx: ctx, client: client}
}

// Updates loads every update newest first. The first call does the work;
// later calls in the same view return the same result.
func (v *View) Updates() ([]content.UpdatePost, error) {
	v.once.Do(func() {
		posts, err := v.client.LoadUpdates(v.ctx)
		if err != nil {
			v.updatesErr = err
			return
		}
		v.updates = content.SortByDateDescending(posts)
	})
	return v.updates, v.updatesErr
}

// RecentUpdates returns at most n of the newest updates.
func (v *View) RecentUpdates(n int) ([]content.UpdatePost, error) {
	posts, err := v.Updates()
	if err != nil {
		return nil, err
	}
	return content.Recent(posts, n), nil
}

func (v *View) Page(name string) (content.ParsedPage, error) {
	return v.client.LoadPage(v.ctx, name)
}
