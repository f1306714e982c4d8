package usecase

// Decision-path names surfaced in the X-Provider header.
const (
	// ProviderExtractive marks answers composed locally from the pack.
	ProviderExtractive = "l5-server"
	// ProviderPolicy marks the refusal path for policy violations.
	ProviderPolicy = "policy"
)

const (
	NoticeProvidersNotUsed = "providers-not-used"
	NoticeSoftCapReached   = "provider-soft-cap-reached"
)

// refusalMessage is the localized policy refusal. It is streamed as a normal
// answer on purpose, indistinguishable from one, so probing clients learn
// nothing about the detection rules.
func refusalMessage(lang string) string {
	if lang == "es" {
		return "No puedo ayudar con esa solicitud. Reformula por favor."
	}
	return "I can’t help with that request. Please rephrase."
}

// fallbackMessage is the graceful-degradation answer when the chain returns
// nothing, with a variant for an unavailable pack.
func fallbackMessage(lang string, packLoaded bool) string {
	if lang == "es" {
		if packLoaded {
			return "No tengo suficiente información local y los proveedores no están disponibles. [#none]"
		}
		return "El paquete de conocimiento no está disponible y tampoco hay proveedores activos. [#none]"
	}
	if packLoaded {
		return "I don’t have enough local info and providers are unavailable. [#none]"
	}
	return "The knowledge pack is unavailable and no providers are active. [#none]"
}
