package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/render"
)

const (
	tooltipCSS = `
    .tooltip { pointer-events: none; }
    .tooltip rect { fill: #ffffff; stroke: #333333; stroke-width: 1; }
    .tooltip text { fill: #111111; font-size: 12px; }
    .tooltip .tip-name { font-weight: 600; }`

	// Placement mirrors interact.PlaceTooltip: above-right, flip, clamp.
	tooltipJS = `
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    const tip = document.getElementById('tooltip');
    const tipName = tip.querySelector('.tip-name');
    const tipValue = tip.querySelector('.tip-value');
    const W = %.1f, H = %.1f, OFF = %.1f;
    function place(px, py) {
      let x = px + OFF, y = py - OFF - H;
      if (x + W > vb.width) x = px - OFF - W;
      if (y < 0) y = py + OFF;
      x = Math.max(0, Math.min(x, Math.max(0, vb.width - W)));
      y = Math.max(0, Math.min(y, Math.max(0, vb.height - H)));
      tip.setAttribute('transform', 'translate(' + x.toFixed(1) + ',' + y.toFixed(1) + ')');
    }
    function toCanvas(evt) {
      const pt = svg.createSVGPoint();
      pt.x = evt.clientX; pt.y = evt.clientY;
      return pt.matrixTransform(svg.getScreenCTM().inverse());
    }
    document.querySelectorAll('.cell').forEach(el => {
      el.addEventListener('mousemove', evt => {
        tipName.textContent = el.dataset.name;
        tipValue.textContent = el.dataset.value;
        const p = toCanvas(evt);
        place(p.x, p.y);
        tip.setAttribute('visibility', 'visible');
      });
      el.addEventListener('mouseleave', () => tip.setAttribute('visibility', 'hidden'));
    });`
)

func renderTooltip(buf *bytes.Buffer, r svgRenderer) {
	w, h := r.tipSize.W, r.tipSize.H
	buf.WriteString(`  <g id="tooltip" class="tooltip" visibility="hidden">` + "\n")
	fmt.Fprintf(buf, `    <rect width="%.1f" height="%.1f" rx="4"/>`+"\n", w, h)
	fmt.Fprintf(buf, `    <text class="tip-name" x="8" y="%.1f"></text>`+"\n", h/2-4)
	fmt.Fprintf(buf, `    <text class="tip-value" x="8" y="%.1f"></text>`+"\n", h/2+12)
	buf.WriteString("  </g>\n")
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", tooltipCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(tooltipJS, w, h, r.offset))
}

// valueLabel is the tooltip text for a cell: the share, preceded by the
// planned value when that is an amount.
func valueLabel(c render.Cell, decimals int32) string {
	share := content.FormatShare(c.Share, 1, decimals)
	if c.Content.ValueText != "" && c.Content.ValueText != share {
		return c.Content.ValueText + " · " + share
	}
	return share
}
