// Package eval runs the fixed benchmark through the answering pipeline and
// scores the answers for faithfulness and relevancy.
package eval

// Case pairs a benchmark question with the reference passages a retriever
// double returns for it.
type Case struct {
	Question string
	Passages []string
}

// Benchmark is the fixed question set. The passages are excerpts from real
// legal texts; keeping them verbatim keeps scores comparable across runs.
var Benchmark = []Case{
	{
		Question: "What are the key differences between a lease and a licence?",
		Passages: []string{
			"Tenant (Fourth Edition)- \"A lease, because it confers an estate in land, is much more than a mere\npersonal or contractual agreement for the occupation of a freeholder's land by a tenant. A lease,\nwhether fixed-term or periodic, confers a right in property, enabling the tenant to exclude all third\nparties, including the landlord, from possession, for the duration of the lease, in return for which a\nrent or periodical payment is reserved out of the land. A contractual licence confers no more than a\npermission on the occupier to do some act on the owner's land which would otherwise constitute a\ntrespass. If exclusive possession is not conferred by an agreement, it is a licence.\"\"\".....the",
		},
	},
	{
		Question: "If a contract is missing a signature from one of the parties, is it legally binding?",
		Passages: []string{
			"the lack of signature of one of the contracting parties renders the agreement null and void. What the\nSeth Banarsi Das vs The Cane Commissioner & Another on 6 December, 1962\nIndian Kanoon - http://indiankanoon.org/doc/1116381/ 12",
			"the appellant who is complaining of the want of signature. In our opinion, the agreement was\nbinding. It may be pointed out that the arbitration clause in the agreement was enforceable, if\nagreed to, even without the signature of the appellant as it is settled law that to constitute an\narbitration agreement in writing it is not necessary that it should be signed by the parties and it is\nsufficient if the terms are reduced to writing and the agreement of the parties thereto is established.\nSee Jugal Kishore Rameshwardas v. Mrs. Goolbai Hormusji (1). In our opinion even if the section be\nheld to be mandatory to the extent that the terms as prescribed should appear in writing, that is\ncomplied with in this case. There was thug a binding contract between the parties and the dispute\nwas to be ,resolved as required by Rule 23.",
		},
	},
	{
		Question: "What are the requirements for a valid will in this jurisdiction?",
		Passages: []string{
			"13. The need and necessity for stringent requirements of clause (c) to Section 63 of the Indian\nSuccession Act has been elucidated and explained in several decisions. In H. Venkatachala Iyengar\nv. B.N. Thimmajamma and Others.2 dilating on the statutory and mandatory requisites for\nvalidating the execution of the Will, this Court had highlighted the dissimilarities between the Will\nwhich is a testamentary instrument vis-„-vis other documents of conveyancing, by emphasising that\nthe Will is produced before the court after the testator who has departed from the world, cannot say\nthat the Will is his own or it is not the same. This factum introduces an element of solemnity to the\ndecision on the question where the Will propounded is proved as the last Will or testament of the\ndeparted testator. Therefore, the propounder to succeed and prove the Will is required to prove by\nsatisfactory evidence that (i) the Will was signed by the testator; (ii) the testator at the time was in a",
			"concerned in this appeal, is that the will has to be attested by two or more witnesses and each of\nthese witnesses must have seen the testator sign or affix his mark to the Will, or must have seen\nsome other person sign the Will in the presence and by the direction of the testator, or must have\nreceived from the testator a personal acknowledgement of signature or mark, or of the signature of\nsuch other person, and each of the witnesses has to sign the Will in the presence of the testator.\nIt is thus clear that one of the requirements of due execution of will is its attestation by two or more\nwitnesses which is mandatory.",
		},
	},
}
