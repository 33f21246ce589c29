package awsconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/jmreicha/ssoprofile/internal/awsconfig"
	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/generate"
)

func TestAWSConfig(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "AWS Config Suite")
}

var _ = ginkgo.Describe("Write", func() {
	var (
		path    string
		session awsconfig.Session
		result  *generate.Result
	)

	manual := strings.TrimLeft(dedent.Dedent(`
		[default]
		region = eu-west-1

		[profile dev]
		region = us-east-1
	`), "\n")

	render := func() string {
		existing, err := awsconfig.Load(path, awsconfig.ModeAppend)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		block, _ := awsconfig.Render(result, session, existing)
		return block
	}

	read := func() string {
		data, err := os.ReadFile(path)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return string(data)
	}

	ginkgo.BeforeEach(func() {
		path = filepath.Join(ginkgo.GinkgoT().TempDir(), ".aws", "config")
		session = awsconfig.Session{Name: "my-sso", StartURL: "https://example.awsapps.com/start", Region: "us-east-1"}
		result = &generate.Result{
			Profiles: []generate.ProfileEntry{
				{Name: "ProdAdmin", AccountID: "111111111111", AccountName: "Prod", RoleName: "Admin", Region: "us-east-1", Output: "json"},
			},
		}
	})

	ginkgo.Describe("append mode", func() {
		ginkgo.It("creates the file and its directory", func() {
			backup, err := awsconfig.Write(path, awsconfig.ModeAppend, render())

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(backup).To(gomega.BeEmpty())
			gomega.Expect(path).To(gomega.BeARegularFile())
			gomega.Expect(read()).To(gomega.HavePrefix("\n#BEGIN_AWS_SSO_PROFILES\n"))
		})

		ginkgo.It("leaves existing content untouched", func() {
			gomega.Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(gomega.Succeed())
			gomega.Expect(os.WriteFile(path, []byte(manual), 0o600)).To(gomega.Succeed())

			_, err := awsconfig.Write(path, awsconfig.ModeAppend, render())

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			content := read()
			gomega.Expect(content).To(gomega.HavePrefix(manual))
			gomega.Expect(strings.Count(content, "#BEGIN_AWS_SSO_PROFILES")).To(gomega.Equal(1))
		})

		ginkgo.It("does not repeat shared sections on a second run", func() {
			_, err := awsconfig.Write(path, awsconfig.ModeAppend, render())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			result.Profiles[0].Name = "ProdAdmin2"
			_, err = awsconfig.Write(path, awsconfig.ModeAppend, render())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			content := read()
			gomega.Expect(strings.Count(content, "[sso-session my-sso]")).To(gomega.Equal(1))
			gomega.Expect(strings.Count(content, "[profile old]")).To(gomega.Equal(1))
			gomega.Expect(strings.Count(content, "#END_AWS_SSO_PROFILES")).To(gomega.Equal(2))

			scan, err := awsconfig.Load(path, awsconfig.ModeAppend)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(scan.Profiles).To(gomega.ConsistOf("ProdAdmin", "ProdAdmin2", "old"))
		})
	})

	ginkgo.Describe("session check", func() {
		ginkgo.BeforeEach(func() {
			_, err := awsconfig.Write(path, awsconfig.ModeAppend, render())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("accepts the same session on a second run", func() {
			existing, err := awsconfig.Load(path, awsconfig.ModeAppend)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(existing.CheckSession(session)).To(gomega.Succeed())
		})

		ginkgo.It("rejects a session name bound to another portal", func() {
			existing, err := awsconfig.Load(path, awsconfig.ModeAppend)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			session.StartURL = "https://new.awsapps.com/start"
			session.Region = "eu-west-1"
			gomega.Expect(existing.CheckSession(session)).To(gomega.MatchError(core.ErrValidation))
		})

		ginkgo.It("frees the session name once the earlier block is pruned", func() {
			existing, err := awsconfig.Load(path, awsconfig.ModePrune)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			session.StartURL = "https://new.awsapps.com/start"
			gomega.Expect(existing.CheckSession(session)).To(gomega.Succeed())

			block, _ := awsconfig.Render(result, session, existing)
			gomega.Expect(block).To(gomega.ContainSubstring("sso_start_url = https://new.awsapps.com/start"))
		})
	})

	ginkgo.Describe("overwrite mode", func() {
		ginkgo.It("backs up the file and replaces it with the block", func() {
			gomega.Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(gomega.Succeed())
			gomega.Expect(os.WriteFile(path, []byte(manual), 0o600)).To(gomega.Succeed())

			existing, err := awsconfig.Load(path, awsconfig.ModeOverwrite)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(existing.Profiles).To(gomega.BeEmpty())

			block, _ := awsconfig.Render(result, session, existing)
			backup, err := awsconfig.Write(path, awsconfig.ModeOverwrite, block)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(backup).To(gomega.BeARegularFile())
			gomega.Expect(read()).To(gomega.Equal(block))

			saved, err := os.ReadFile(backup)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(saved)).To(gomega.Equal(manual))
		})
	})

	ginkgo.Describe("prune mode", func() {
		ginkgo.It("replaces earlier blocks and frees their names", func() {
			_, err := awsconfig.Write(path, awsconfig.ModeAppend, render())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			existing, err := awsconfig.Load(path, awsconfig.ModePrune)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(existing.HasProfile("ProdAdmin")).To(gomega.BeFalse())

			block, _ := awsconfig.Render(result, session, existing)
			backup, err := awsconfig.Write(path, awsconfig.ModePrune, block)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(backup).NotTo(gomega.BeEmpty())

			content := read()
			gomega.Expect(strings.Count(content, "#BEGIN_AWS_SSO_PROFILES")).To(gomega.Equal(1))
			gomega.Expect(strings.Count(content, "[profile ProdAdmin]")).To(gomega.Equal(1))
		})

		ginkgo.It("keeps manual sections", func() {
			gomega.Expect(os.MkdirAll(filepath.Dir(path), 0o700)).To(gomega.Succeed())
			gomega.Expect(os.WriteFile(path, []byte(manual), 0o600)).To(gomega.Succeed())
			_, err := awsconfig.Write(path, awsconfig.ModeAppend, render())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			existing, err := awsconfig.Load(path, awsconfig.ModePrune)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			block, _ := awsconfig.Render(result, session, existing)
			_, err = awsconfig.Write(path, awsconfig.ModePrune, block)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(read()).To(gomega.Equal(manual + block))
		})
	})
})
