package role

// References holds one template sequence per role. The zero value is
// useless; start from Default and replace what you need.
type References struct {
	Alpha string `mapstructure:"alpha"`
	Beta  string `mapstructure:"beta"`
	MHC   string `mapstructure:"mhc"`
	B2M   string `mapstructure:"b2m"`
}

// Templates from 1ao7 (MHC, B2M) and 1a07 (alpha, beta).
const (
	alphaRef = "KEVEQNSGPLSVPEGAIASLNCTYSDRGSQSFFTYRQYSGKSPELIMSIYSNGDKEDGRFTAQLNKASQYVSLLIRDSQPSDSATYLCAVTTDSTGKLQFGAGT" +
		"QVVVTPDIQNPDPAVYQLRDSKSSDKSVCLFTDFDSQTNVSQSKDSDVYITDKTVLDMRSMDFKSNSAVATSNKSDFACANAFNNSIIPEDTFFPSPESS"
	betaRef = "NAGVTQTPKFQVLKTGQSMTLQCAQDMNHEYMSTYRQDPGMGLRLIHYSVGAGITDQGEVPNGYNVSRSTTEDFPLRLLSAAPSQTSVYFCASRPGLAGGRPEQ" +
		"YFGPGTRLTVTEDLKNVFPPEVAVFEPSEAEISHTQKATLVCLATGFYPDHVELSTTVNGKEVHSGVSTDPQPLKEQPALNDSRYALSSRLRVSATFTQNPRNHF" +
		"RCQVQFYGLSENDETTQDRAKPVTQIVSAEATGRAD"
	mhcRef = "GSHSMRYFFTSVSRPGRGEPRFIAVGYVDDTQFVRFDSDAASQRMEPRAPWIEQEGPEYWDGETRKVKAHSQTHRVDLGTLRGYYNQSEAGSHTV" +
		"QRMYGCDVGSDWRFLRGYHQYAYDGKDYIALKEDLRSWTAADMAAQTTKHKWEAAHVAEQLRAYLEGTCVEWLRRYLENGKETLQRTDAPKTHMT" +
		"HHAVSDHEATLRCWALSFYPAEITLTWQRDGEDQTQDTELVETRPAGDGTFQKWAAVVVPSGQEQRYTCHVQHEGLPKPLTLRWE"
	b2mRef = "MIQRTPKIQVYSRHPAENGKSNFLNCYVSGFHPSDIEVDLLKNGERIEKVEHSDLSFSKDWSFYLLYCTEFTPTEKDEYACRVNHVTLSQPCIVKWDRDM"
)

// Default returns the built-in templates.
func Default() References {
	return References{Alpha: alphaRef, Beta: betaRef, MHC: mhcRef, B2M: b2mRef}
}

// For looks a template up by role. Peptides have no template.
func (r References) For(role Role) string {
	switch role {
	case Alpha:
		return r.Alpha
	case Beta:
		return r.Beta
	case MHC:
		return r.MHC
	case B2M:
		return r.B2M
	}
	return ""
}

// merge fills empty entries of r from d.
func (r References) merge(d References) References {
	if r.Alpha == "" {
		r.Alpha = d.Alpha
	}
	if r.Beta == "" {
		r.Beta = d.Beta
	}
	if r.MHC == "" {
		r.MHC = d.MHC
	}
	if r.B2M == "" {
		r.B2M = d.B2M
	}
	return r
}
