package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/mem/vm/frame"
)

func setenv(name, value string) {
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "config")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	It("should have valid defaults", func() {
		c := config.Defaults()

		Expect(c.NumFrames).To(Equal(256))
		Expect(c.TLBCapacity).To(Equal(5))
		Expect(c.TLBEnabled).To(BeTrue())
		Expect(c.Validate()).To(Succeed())
	})

	It("should overlay a JSON file on the defaults", func() {
		path := filepath.Join(dir, "vmsim.json")
		Expect(os.WriteFile(path,
			[]byte(`{"num_frames": 128, "tlb_enabled": false}`), 0o644)).
			To(Succeed())

		c := config.Defaults()
		Expect(config.Load(path, &c)).To(Succeed())

		Expect(c.NumFrames).To(Equal(128))
		Expect(c.TLBEnabled).To(BeFalse())
		Expect(c.Policy).To(Equal("fifo"))
	})

	It("should fail on a malformed JSON file", func() {
		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte(`{"num_frames":`), 0o644)).To(Succeed())

		c := config.Defaults()

		Expect(config.Load(path, &c)).NotTo(Succeed())
	})

	It("should read environment variables", func() {
		setenv("VMSIM_FRAMES", "64")
		setenv("VMSIM_TLB", "false")
		setenv("VMSIM_SUMMARY_FORMAT", "json")

		c := config.Defaults()
		Expect(c.LoadEnv()).To(Succeed())

		Expect(c.NumFrames).To(Equal(64))
		Expect(c.TLBEnabled).To(BeFalse())
		Expect(c.SummaryFormat).To(Equal("json"))
	})

	It("should read dotenv files without overriding the environment", func() {
		path := filepath.Join(dir, ".env")
		Expect(os.WriteFile(path,
			[]byte("VMSIM_ADDRESSES=addresses.txt\nVMSIM_LOG_LEVEL=DEBUG\n"),
			0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, "VMSIM_ADDRESSES")
		setenv("VMSIM_LOG_LEVEL", "WARN")

		c := config.Defaults()
		Expect(c.LoadEnv(path, filepath.Join(dir, "missing.env"))).To(Succeed())

		Expect(c.AddressFile).To(Equal("addresses.txt"))
		Expect(c.LogLevel).To(Equal("WARN"))
	})

	It("should reject malformed numbers", func() {
		setenv("VMSIM_FRAMES", "many")

		c := config.Defaults()

		Expect(c.LoadEnv()).NotTo(Succeed())
	})

	DescribeTable("validation",
		func(mutate func(*config.Config), ok bool) {
			c := config.Defaults()
			mutate(&c)

			err := c.Validate()

			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(config.ErrInvalid))
			}
		},
		Entry("zero frames", func(c *config.Config) { c.NumFrames = 0 }, true),
		Entry("negative frames",
			func(c *config.Config) { c.NumFrames = -1 }, false),
		Entry("upper-case policy",
			func(c *config.Config) { c.Policy = "FIFO" }, true),
		Entry("unknown policy",
			func(c *config.Config) { c.Policy = "lru" }, false),
		Entry("zero TLB capacity",
			func(c *config.Config) { c.TLBCapacity = 0 }, false),
		Entry("zero TLB capacity with the TLB off",
			func(c *config.Config) {
				c.TLBCapacity = 0
				c.TLBEnabled = false
			}, true),
		Entry("unknown format",
			func(c *config.Config) { c.SummaryFormat = "xml" }, false),
	)

	It("should report unknown policies as such", func() {
		c := config.Defaults()
		c.Policy = "lru"

		Expect(c.Validate()).To(MatchError(frame.ErrUnknownPolicy))
	})
})
