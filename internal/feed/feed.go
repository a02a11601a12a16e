package feed

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Name is the object key the feed is published under.
const Name = "feed.xml"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}

type Client interface {
	s3.ListObjectsV2APIClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type Generator struct {
	client  Client
	bucket  string
	siteURL string
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	client := do.MustInvoke[*s3.Client](i)
	bucket := do.MustInvokeNamed[string](i, "bucket")
	siteURL := do.MustInvokeNamed[string](i, "site_url")
	return &Generator{client, bucket, siteURL}, nil
}

func isGenerated(o s3types.Object) bool {
	key := aws.ToString(o.Key)
	return lo.Contains(imageExtensions, strings.ToLower(path.Ext(key))) && !strings.HasPrefix(path.Base(key), "latest")
}

// Generate renders an RSS feed of every generated image in the bucket,
// oldest first.
func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed", "bucket", g.bucket)

	feed := feeds.Feed{
		Title:       "imagegen",
		Description: "Generated images",
		Link:        &feeds.Link{Href: g.siteURL},
		Updated:     time.Now(),
	}

	pager := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
	})

	var mu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range lo.Filter(page.Contents, func(o s3types.Object, _ int) bool { return isGenerated(o) }) {
			key := aws.ToString(obj.Key)
			group.Go(func() error {
				out, err := g.client.HeadObject(gctx, &s3.HeadObjectInput{
					Bucket: aws.String(g.bucket),
					Key:    aws.String(key),
				})
				if err != nil {
					return err
				}

				meta := out.Metadata
				item := &feeds.Item{
					Id:          key,
					Title:       lo.Ternary(meta["prompt"] != "", meta["prompt"], key),
					Description: strings.TrimSpace(meta["model"] + " " + meta["mode"]),
					Link:        &feeds.Link{Href: g.siteURL + "/" + key},
					Updated:     aws.ToTime(out.LastModified),
				}
				mu.Lock()
				feed.Add(item)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.Before(b.Updated)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}
