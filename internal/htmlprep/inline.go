package htmlprep

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// fallbackContentType is assumed when the image response carries no
// Content-Type header.
const fallbackContentType = "image/jpeg"

// InlineImages rewrites every <img> reference into a base64 data URL so the
// document renders without further network access. Filings reference images
// with paths relative to the filing's archive directory, so each src is
// resolved against baseURL first. Strictly best-effort: any per-image
// failure leaves that reference untouched and never aborts the rest of the
// document.
func (p *Preparer) InlineImages(ctx context.Context, htmlContent, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		p.logger.Debug("invalid base url, skipping image inlining",
			zap.String("base_url", baseURL), zap.Error(err))
		return htmlContent
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		p.logger.Debug("unparseable document, skipping image inlining", zap.Error(err))
		return htmlContent
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		// Already embedded, nothing to fetch.
		if strings.HasPrefix(src, "data:") {
			return
		}

		ref, err := url.Parse(src)
		if err != nil {
			p.logger.Debug("unparseable image src", zap.String("src", src), zap.Error(err))
			return
		}
		absolute := base.ResolveReference(ref).String()

		dataURL, err := p.fetchAsDataURL(ctx, absolute)
		if err != nil {
			// Leave the original reference; it renders as a broken
			// image rather than failing the document.
			p.logger.Debug("image inline failed",
				zap.String("url", absolute), zap.Error(err))
			return
		}
		img.SetAttr("src", dataURL)
	})

	out, err := doc.Html()
	if err != nil {
		p.logger.Debug("serialize inlined document failed", zap.Error(err))
		return htmlContent
	}
	return out
}

func (p *Preparer) fetchAsDataURL(ctx context.Context, rawURL string) (string, error) {
	resp, err := p.client.GetWithTimeout(ctx, rawURL, p.imageTimeout)
	if err != nil {
		return "", err
	}
	contentType := resp.Headers.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackContentType
	}
	payload := base64.StdEncoding.EncodeToString(resp.Body)
	return fmt.Sprintf("data:%s;base64,%s", contentType, payload), nil
}
