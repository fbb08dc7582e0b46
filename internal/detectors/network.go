package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// NetworkExfil flags outbound network calls whose payload includes
// host-identifying data: hostname, user identity, MAC address, environment,
// working directory. Severity rises when the payload passed through an
// encoder first; encoding before upload is deliberate concealment.
var NetworkExfil = Detector{
	ID:       "network_exfil",
	Category: types.CatNetworkExfiltration,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok || !isOutboundNetwork(v.Path) {
			return nil
		}
		orig := argOrigins(n, ctx)
		if !orig.Any(resolver.OriginFingerprint | resolver.OriginEnv) {
			return nil
		}
		sev, conf := types.SevMed, 0.75
		evidence := v.Target() + " <- host identity"
		if orig.Any(resolver.OriginEncoded) {
			sev, conf = types.SevHigh, 0.9
			evidence = v.Target() + " <- encoded host identity"
		}
		return []types.Finding{
			ctx.Finding("network_exfil", types.CatNetworkExfiltration, sev, conf, n, evidence),
		}
	},
}

var webhookHosts = []string{
	"discord.com/api/webhooks",
	"discordapp.com/api/webhooks",
	"hooks.slack.com",
	"api.telegram.org/bot",
}

// WebhookExfil flags outbound calls aimed at chat-service webhook
// endpoints, a routine exfiltration channel for collected data.
var WebhookExfil = Detector{
	ID:       "webhook_exfil",
	Category: types.CatNetworkExfiltration,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok || !isOutboundNetwork(v.Path) {
			return nil
		}
		for _, arg := range n.Args() {
			url, _, ok := ctx.Res.FoldString(arg)
			if !ok {
				continue
			}
			for _, host := range webhookHosts {
				if strings.Contains(url, host) {
					return []types.Finding{
						ctx.Finding("webhook_exfil", types.CatNetworkExfiltration, types.SevHigh, 0.9, n, firstLine(url)),
					}
				}
			}
		}
		return nil
	},
}
