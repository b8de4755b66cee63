package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/kintree/pkg/layout"
)

const cardCSS = `
    .edge { fill: none; stroke: #8a8f98; stroke-width: 2; }
    .edge-spouse { stroke: #c08497; stroke-dasharray: 6 4; }
    .card rect.body { stroke: #4a4e57; stroke-width: 1.5; rx: 10; }
    .card.gender-M rect.body { fill: #dbe9f6; }
    .card.gender-F rect.body { fill: #f8dce6; }
    .card.gender- rect.body { fill: #ececec; }
    .card.temporary rect.body { stroke-dasharray: 5 3; opacity: 0.7; }
    .card .name { font: bold 15px sans-serif; fill: #1d1f24; }
    .card .sub { font: 12px sans-serif; fill: #50545c; }
    .card .initials { font: bold 16px sans-serif; fill: #ffffff; text-anchor: middle; dominant-baseline: central; }
    .card .placeholder { fill: #8a8f98; }
    .card .pin { fill: #e07a2f; }
    .toggle circle { fill: #ffffff; stroke: #4a4e57; }
    .toggle text { font: bold 14px sans-serif; text-anchor: middle; dominant-baseline: central; pointer-events: none; }
    .card, .toggle { cursor: pointer; }`

// pointerJS posts raw pointer events and swaps in scenes pushed back by the
// server. It never decides between click and drag.
const pointerJS = `
    (function () {
      const svg = document.querySelector('svg');
      const url = (location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + %q;
      const ws = new WebSocket(url);
      let active = null;
      function pt(ev) {
        const p = svg.createSVGPoint();
        p.x = ev.clientX; p.y = ev.clientY;
        const m = svg.getScreenCTM().inverse();
        const q = p.matrixTransform(m);
        return { x: q.x, y: q.y };
      }
      function send(msg) { if (ws.readyState === 1) ws.send(JSON.stringify(msg)); }
      svg.addEventListener('pointerdown', ev => {
        const card = ev.target.closest('.card');
        if (!card) return;
        const p = pt(ev);
        active = card;
        send({ type: 'down', node: card.dataset.id, x: p.x, y: p.y,
               card_x: parseFloat(card.dataset.x), card_y: parseFloat(card.dataset.y),
               toggle: !!ev.target.closest('.toggle') });
        ev.preventDefault();
      });
      window.addEventListener('pointermove', ev => { if (active) { const p = pt(ev); send({ type: 'move', x: p.x, y: p.y }); } });
      window.addEventListener('pointerup', ev => { if (active) { const p = pt(ev); active = null; send({ type: 'up', x: p.x, y: p.y }); } });
      window.addEventListener('pointercancel', () => { if (active) { active = null; send({ type: 'cancel' }); } });
      ws.addEventListener('message', ev => {
        const msg = JSON.parse(ev.data);
        if (msg.type !== 'scene') return;
        const doc = new DOMParser().parseFromString(msg.svg, 'image/svg+xml');
        const next = doc.getElementById('scene');
        const cur = svg.querySelector('#scene');
        if (next && cur) cur.replaceWith(document.importNode(next, true));
        const root = doc.documentElement;
        ['viewBox', 'width', 'height'].forEach(a => svg.setAttribute(a, root.getAttribute(a)));
      });
    })();`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	wsPath  string
	avatars bool
	title   string
}

// WithInteractive embeds the pointer script posting events to the websocket
// at path.
func WithInteractive(path string) SVGOption { return func(r *svgRenderer) { r.wsPath = path } }

// WithoutAvatars draws initials even when an avatar URL is present.
func WithoutAvatars() SVGOption { return func(r *svgRenderer) { r.avatars = false } }

// WithTitle sets the document title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// SVG renders card layouts as SVG documents.
type SVG struct {
	opts []SVGOption
}

// NewSVG returns an SVG renderer.
func NewSVG(opts ...SVGOption) *SVG { return &SVG{opts: opts} }

func (s *SVG) Render(l *layout.Layout) ([]byte, error) { return RenderSVG(l, s.opts...), nil }
func (s *SVG) ContentType() string                      { return "image/svg+xml" }
func (s *SVG) Format() string                           { return "svg" }

// RenderSVG draws l. An empty layout yields an empty canvas.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{avatars: true}
	for _, opt := range opts {
		opt(&r)
	}

	o, w, h := l.Origin(), l.Width(), l.Height()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		o.X, o.Y, w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardCSS)

	buf.WriteString(`  <g id="scene">` + "\n")
	for _, e := range l.Edges {
		renderEdge(&buf, e)
	}
	for _, n := range l.Nodes {
		renderCard(&buf, n, r.avatars)
	}
	buf.WriteString("  </g>\n")

	if r.wsPath != "" {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(pointerJS, r.wsPath))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdge(buf *bytes.Buffer, e layout.Edge) {
	if len(e.Points) < 2 {
		return
	}
	pts := make([]string, len(e.Points))
	for i, p := range e.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `    <polyline class="edge edge-%s" data-from="%s" data-to="%s" points="%s"/>`+"\n",
		e.Kind, escapeXML(e.From), escapeXML(e.To), strings.Join(pts, " "))
}

const (
	avatarRadius = 24.0
	padding      = 12.0
	toggleRadius = 11.0
)

func renderCard(buf *bytes.Buffer, n layout.Node, avatars bool) {
	class := "card gender-" + string(n.Gender)
	if n.Temporary {
		class += " temporary"
	}
	if n.Pinned {
		class += " pinned"
	}
	id := escapeXML(n.ID)
	fmt.Fprintf(buf, `    <g class="%s" id="card-%s" data-id="%s" data-x="%.1f" data-y="%.1f" transform="translate(%.1f,%.1f)">`+"\n",
		class, id, id, n.X, n.Y, n.X, n.Y)
	fmt.Fprintf(buf, `      <rect class="body" width="%.1f" height="%.1f" rx="10"/>`+"\n", n.Width, n.Height)

	cx, cy := padding+avatarRadius, n.Height/2
	if avatars && n.Avatar != "" {
		fmt.Fprintf(buf, `      <clipPath id="clip-%s"><circle cx="%.1f" cy="%.1f" r="%.1f"/></clipPath>`+"\n", id, cx, cy, avatarRadius)
		fmt.Fprintf(buf, `      <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" clip-path="url(#clip-%s)" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			escapeXML(n.Avatar), cx-avatarRadius, cy-avatarRadius, 2*avatarRadius, 2*avatarRadius, id)
	} else {
		fmt.Fprintf(buf, `      <circle class="placeholder" cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, avatarRadius)
		fmt.Fprintf(buf, `      <text class="initials" x="%.1f" y="%.1f">%s</text>`+"\n", cx, cy, escapeXML(n.Initials))
	}

	tx := cx + avatarRadius + padding
	avail := n.Width - tx - padding
	fmt.Fprintf(buf, `      <text class="name" x="%.1f" y="%.1f">%s</text>`+"\n", tx, cy-4, escapeXML(truncate(n.Label, avail, 8.5)))
	if n.Subtitle != "" {
		fmt.Fprintf(buf, `      <text class="sub" x="%.1f" y="%.1f">%s</text>`+"\n", tx, cy+14, escapeXML(truncate(n.Subtitle, avail, 6.8)))
	}

	if n.Pinned {
		fmt.Fprintf(buf, `      <circle class="pin" cx="%.1f" cy="%.1f" r="4"><title>moved manually</title></circle>`+"\n", n.Width-10, 10.0)
	}
	if n.HasChildren || n.Collapsed {
		sign := "−"
		if n.Collapsed {
			sign = "+"
		}
		fmt.Fprintf(buf, `      <g class="toggle" transform="translate(%.1f,%.1f)"><circle r="%.1f"/><text>%s</text></g>`+"\n",
			n.Width/2, n.Height, toggleRadius, sign)
	}
	buf.WriteString("    </g>\n")
}

// truncate shortens s to fit avail units assuming charWidth per rune.
func truncate(s string, avail, charWidth float64) string {
	limit := max(3, int(avail/charWidth))
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
