package layout

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

var _ = Describe("Layout", func() {
	var (
		bounds dynamo.Bounds
		l      *Layout
	)

	BeforeEach(func() {
		bounds = dynamo.NewBounds(800, 500, 50, true)
		l = New(QWERTY, bounds)
	})

	Describe("construction", func() {
		It("creates one node per character", func() {
			Expect(l.Len()).To(Equal(26))
		})

		It("maps every letter to its own node", func() {
			seen := map[int]bool{}
			for _, r := range "qwertyuiopasdfghjklzxcvbnm" {
				i, ok := l.Index(r)
				Expect(ok).To(BeTrue(), "missing %q", r)
				Expect(seen[i]).To(BeFalse(), "%q shares node %d", r, i)
				seen[i] = true
				Expect(l.Node(i).Symbol).To(Equal(r))
			}
		})

		It("case-folds symbols", func() {
			upper, ok := l.Index('Q')
			Expect(ok).To(BeTrue())
			lower, _ := l.Index('q')
			Expect(upper).To(Equal(lower))
		})

		It("spans the inset domain along rows and columns", func() {
			q, _ := l.Index('q')
			p, _ := l.Index('p')
			z, _ := l.Index('z')
			Expect(l.Node(q).Pos).To(Equal(dynamo.Vec{X: bounds.Left(), Y: bounds.Top()}))
			Expect(l.Node(p).Pos.X).To(BeNumerically("~", bounds.Right(), 1e-9))
			Expect(l.Node(z).Pos.Y).To(BeNumerically("~", bounds.Bottom(), 1e-9))
		})

		It("puts a single-key row on the horizontal midpoint", func() {
			single := New([]string{"ab", "c"}, bounds)
			c, _ := single.Index('c')
			Expect(single.Node(c).Pos.X).To(BeNumerically("~", bounds.Center().X, 1e-9))
			Expect(single.Node(c).Pos.Y).To(BeNumerically("~", bounds.Bottom(), 1e-9))
		})

		It("puts a single row on the vertical midpoint", func() {
			one := New([]string{"x"}, bounds)
			Expect(one.Node(0).Pos).To(Equal(bounds.Center()))
		})
	})

	Describe("activation", func() {
		It("round-trips activate and deactivate", func() {
			Expect(l.Activate('f')).To(BeTrue())
			f, _ := l.Index('f')
			Expect(l.Node(f).Activation).To(Equal(1.0))
			Expect(l.Deactivate('f')).To(BeTrue())
			Expect(l.Node(f).Activation).To(Equal(0.0))
		})

		It("is idempotent", func() {
			l.Activate('j')
			l.Activate('j')
			l.Activate('J')
			j, _ := l.Index('j')
			Expect(l.Node(j).Activation).To(Equal(1.0))
			Expect(l.Active()).To(Equal(1))
		})

		It("ignores unknown symbols", func() {
			Expect(l.Activate('1')).To(BeFalse())
			Expect(l.Deactivate('#')).To(BeFalse())
			Expect(l.Active()).To(BeZero())
		})

		It("survives relayout", func() {
			l.Activate('g')
			l.Relayout(dynamo.NewBounds(1600, 900, 0, false))
			g, _ := l.Index('g')
			Expect(l.Node(g).Activation).To(Equal(1.0))
			Expect(l.Node(g).Pos.X).To(BeNumerically(">", 0))
		})
	})

	Describe("sources", func() {
		It("lists only active nodes, scaled by gain", func() {
			l.Activate('a')
			l.Activate('m')
			src := l.Sources(nil, func(int) float64 { return 0.5 })
			Expect(src).To(HaveLen(2))
			for _, s := range src {
				Expect(s.Level).To(Equal(0.5))
				Expect(s.Pos).To(Equal(l.Node(s.Index).Pos))
			}
		})

		It("is empty when nothing is pressed", func() {
			Expect(l.Sources(nil, nil)).To(BeEmpty())
		})
	})

	Describe("neighbors", func() {
		It("links staggered keyboard neighbours symmetrically", func() {
			q, _ := l.Index('q')
			w, _ := l.Index('w')
			a, _ := l.Index('a')
			s, _ := l.Index('s')
			Expect(l.Neighbors(q)).To(ConsistOf(w, a, s))
			for i := 0; i < l.Len(); i++ {
				for _, j := range l.Neighbors(i) {
					Expect(l.Neighbors(j)).To(ContainElement(i))
				}
			}
		})
	})
})
