package boxopt

import (
	"bytes"
	"context"
	"math/big"
	"math/rand"

	"github.com/go-air/gini/z"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/boxopt/pkg/formula"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

var _ = Describe("Optimizer", func() {
	var (
		ctx        context.Context
		hard       *formula.HardFormula
		objectives []formula.Objective
	)

	BeforeEach(func() {
		ctx = context.Background()
		hard = formula.RandomFormula(24, 48, 21)
		objectives = randomObjectives(rand.New(rand.NewSource(21)), 5, 10, 24)
	})

	Context("with the sequential engine as reference", func() {
		var reference *Result

		BeforeEach(func() {
			var err error
			reference, err = Sequential{Oracle: oracle.Gini{}}.Optimize(ctx, hard, objectives)
			Expect(err).ToNot(HaveOccurred())
		})

		DescribeTable("produces identical scores",
			func(workers, batch int, exit ExitPolicy) {
				opt, err := New(oracle.Gini{}, WithWorkers(workers), WithBatchSize(batch), WithExitPolicy(exit))
				Expect(err).ToNot(HaveOccurred())
				result, err := opt.Optimize(ctx, hard, objectives)
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Scores).To(HaveLen(len(objectives)))
				for i := range objectives {
					Expect(result.Scores[i].Cmp(reference.Scores[i])).To(BeZero(), "objective %d", i)
				}
			},
			Entry("one worker, one bit", 1, 1, ExitWhenEmpty),
			Entry("two workers, two bits", 2, 2, ExitWhenEmpty),
			Entry("four workers, four bits", 4, 4, ExitWhenEmpty),
			Entry("eight workers, whole objectives", 8, 0, ExitWhenEmpty),
			Entry("eight workers waiting for completion", 8, 1, WaitForCompletion),
		)

		It("keeps every score within range", func() {
			for i, s := range reference.Scores {
				Expect(s.Sign()).To(BeNumerically(">=", 0))
				Expect(s.Cmp(MaxScore(objectives[i].Len()))).To(BeNumerically("<=", 0))
			}
		})

		It("uses the model cache", func() {
			Expect(reference.Stats.FastPath).To(BeNumerically(">", 0))
			Expect(reference.Stats.OracleCalls).To(BeNumerically("<=", int64(len(objectives)*(10+1))))
		})
	})

	Context("when the hard formula is contradictory", func() {
		BeforeEach(func() {
			hard = formula.NewHardFormula([][]z.Lit{formula.Lits(1), formula.Lits(-1)})
		})

		It("reports the formula as unsatisfiable without scores", func() {
			opt, err := New(oracle.Gini{}, WithWorkers(4), WithBatchSize(1))
			Expect(err).ToNot(HaveOccurred())
			result, err := opt.Optimize(ctx, hard, objectives)
			Expect(err).To(MatchError(ErrFormulaUnsat))
			Expect(result).To(BeNil())
		})
	})

	Context("with a logging tracer", func() {
		It("records decisions, releases and exits", func() {
			var buf bytes.Buffer
			opt, err := New(oracle.Gini{}, WithWorkers(1), WithBatchSize(1), WithTracer(&LoggingTracer{Writer: &buf}))
			Expect(err).ToNot(HaveOccurred())
			result, err := opt.Optimize(ctx, formula.NewHardFormula(nil), []formula.Objective{
				{Name: "o", Lits: formula.Lits(1, 2)},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Scores).To(HaveLen(1))
			Expect(result.Scores[0].Cmp(big.NewInt(3))).To(BeZero())
			Expect(buf.String()).To(ContainSubstring("Event: decided\nWorker: 0\nObjective: 0\nLiteral: 1\nDecided: 1\nFastPath: false\n"))
			Expect(buf.String()).To(ContainSubstring("Event: released\nWorker: 0\nObjective: 0\nDecided: 1\n"))
			Expect(buf.String()).To(ContainSubstring("Event: completed\nWorker: 0\nObjective: 0\nDecided: 2\n"))
			Expect(buf.String()).To(ContainSubstring("Event: exited\nWorker: 0\nPending: 0\n"))
		})
	})
})
