package convert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
)

// markdownConverter turns Blogger HTML into markdown, with handlers for the
// markup Blogger generates.
type markdownConverter struct {
	post string // output file, for the logs
	mdc  *converter.Converter
}

func newMarkdownConverter(post string) *markdownConverter {
	mc := &markdownConverter{post: post}
	mc.mdc = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)

	// handlers for Blogger tags
	mc.mdc.Register.RendererFor("a", converter.TagTypeInline, mc.liquidAnchorHandler, converter.PriorityEarly)
	mc.mdc.Register.RendererFor("table", converter.TagTypeBlock, mc.captionTableHandler, converter.PriorityEarly)
	mc.mdc.Register.RendererFor("iframe", converter.TagTypeBlock, mc.iFrameHandler, converter.PriorityEarly)
	mc.mdc.Register.RendererFor("object", converter.TagTypeBlock, mc.objectHandler, converter.PriorityEarly)
	return mc
}

func (mc *markdownConverter) ConvertString(ctx context.Context, s string) (string, error) {
	return mc.mdc.ConvertString(s, converter.WithContext(ctx))
}

// linkTextEscaper escapes the characters that would end the link text or
// start an emphasis.
var linkTextEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

// liquidAnchorHandler keeps the post_url references verbatim: the default
// renderer would escape them.
func (mc *markdownConverter) liquidAnchorHandler(ctx converter.Context, w converter.Writer, node *html.Node) converter.RenderStatus {
	href := dom.GetAttributeOr(node, "href", "")
	if !strings.HasPrefix(href, "{%") {
		return converter.RenderTryNext
	}
	text := linkTextEscaper.Replace(strings.Join(strings.Fields(dom.CollectText(node)), " "))
	if text == "" {
		text = linkTextEscaper.Replace(href)
	}
	w.WriteString("[" + text + "](" + href + ")")
	return converter.RenderSuccess
}

// captionTableHandler renders the <table class="tr-caption-container"> Blogger
// uses for an image with a caption.
func (mc *markdownConverter) captionTableHandler(ctx converter.Context, w converter.Writer, node *html.Node) converter.RenderStatus {
	if !dom.HasClass(node, "tr-caption-container") {
		return converter.RenderTryNext
	}
	img := dom.FindFirstNode(node, func(node *html.Node) bool {
		return dom.NodeName(node) == "img"
	})
	if img == nil {
		return converter.RenderTryNext
	}

	src := dom.GetAttributeOr(img, "src", "")
	alt := dom.GetAttributeOr(img, "alt", "")
	caption := ""
	captionNode := dom.FindFirstNode(node, func(node *html.Node) bool {
		return dom.NodeName(node) == "td" && dom.HasClass(node, "tr-caption")
	})
	if captionNode != nil {
		caption = strings.Join(strings.Fields(dom.CollectText(captionNode)), " ")
	}

	w.WriteString("\n\n![" + alt + "](" + src + ")\n")
	if caption != "" {
		w.WriteString("*" + caption + "*\n")
	}
	w.WriteString("\n")
	return converter.RenderSuccess
}

// iFrameHandler keeps embedded players (YouTube, maps…) as raw HTML, which
// kramdown passes through.
func (mc *markdownConverter) iFrameHandler(ctx converter.Context, w converter.Writer, node *html.Node) converter.RenderStatus {
	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return converter.RenderTryNext
	}
	w.WriteString("\n\n" + sb.String() + "\n\n")
	return converter.RenderSuccess
}

// objectHandler drops <object> embeds: they point to Blogger hosted videos
// that are not part of the export.
func (mc *markdownConverter) objectHandler(ctx converter.Context, w converter.Writer, node *html.Node) converter.RenderStatus {
	slog.Warn("embedded object dropped", "post", mc.post, "data", dom.GetAttributeOr(node, "data", ""))
	return converter.RenderSuccess
}
