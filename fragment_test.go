package reagent_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/praxis-ai/reagent"
	"github.com/praxis-ai/reagent/structures"
	"github.com/praxis-ai/reagent/tests/mock"
	"github.com/sashabaranov/go-openai"
)

type testImage struct {
	url string
}

func (t testImage) URL() string {
	return t.url
}

var _ = Describe("Fragment", func() {
	Context("Basic operations", func() {
		It("should add messages", func() {
			fragment := Fragment{}
			fragment = fragment.AddMessage(UserMessageRole, "Hello")
			fragment = fragment.AddMessage(AssistantMessageRole, "Hi!")
			fragment = fragment.AddStartMessage(SystemMessageRole, "You are a helpful assistant.")

			Expect(fragment.Messages).To(HaveLen(3))
			Expect(fragment.Messages[0].Role).To(Equal("system"))
			Expect(fragment.Messages[1].Role).To(Equal("user"))
			Expect(fragment.Messages[2].Role).To(Equal("assistant"))
		})

		It("should not mutate the receiver", func() {
			base := NewEmptyFragment().AddMessage(UserMessageRole, "Hello")

			a := base.AddMessage(AssistantMessageRole, "Hi!")
			b := base.AddMessage(AssistantMessageRole, "Hey there!")

			Expect(base.Messages).To(HaveLen(1))
			Expect(a.Messages[1].Content).To(Equal("Hi!"))
			Expect(b.Messages[1].Content).To(Equal("Hey there!"))
		})

		It("should attach multimedia as multi content", func() {
			fragment := NewEmptyFragment().
				AddMessage(UserMessageRole, "What is in this picture?", testImage{url: "https://example.com/cat.png"})

			Expect(fragment.Multimedia).To(HaveLen(1))
			Expect(fragment.Messages[0].MultiContent).To(HaveLen(2))
			Expect(fragment.Messages[0].MultiContent[1].ImageURL.URL).To(Equal("https://example.com/cat.png"))
		})

		It("should extract the last assistant messages", func() {
			fragment := Fragment{}
			fragment = fragment.AddMessage(UserMessageRole, "Hello")
			fragment = fragment.AddMessage(AssistantMessageRole, "Hi!")
			fragment = fragment.AddMessage(UserMessageRole, "How are you?")
			fragment = fragment.AddMessage(AssistantMessageRole, "Fine!")
			fragment = fragment.AddMessage(AssistantMessageRole, "And you?")

			last := fragment.LastAssistantMessages()
			Expect(last).To(HaveLen(2))
			Expect(last[0].Content).To(Equal("Fine!"))
			Expect(last[1].Content).To(Equal("And you?"))
		})

		It("should append tool results correlated by ID", func() {
			fragment := NewEmptyFragment().
				AddToolResult("get_weather", "It's always sunny in sf", "call-1")

			Expect(fragment.Messages[0].Role).To(Equal("tool"))
			Expect(fragment.Messages[0].Name).To(Equal("get_weather"))
			Expect(fragment.Messages[0].ToolCallID).To(Equal("call-1"))
		})

		It("should render the conversation as a string", func() {
			fragment := NewEmptyFragment().
				AddMessage(UserMessageRole, "Hello").
				AddMessage(AssistantMessageRole, "Hi!")

			Expect(fragment.String()).To(Equal("user: Hello\nassistant: Hi!\n"))
		})

		It("should chain parent conversations", func() {
			parent := NewEmptyFragment().AddMessage(UserMessageRole, "First conversation")
			child := NewEmptyFragment().AddMessage(UserMessageRole, "Second conversation")
			child.ParentFragment = &parent

			Expect(child.AllFragmentsStrings()).To(ContainSubstring("First conversation"))
			Expect(child.AllFragmentsStrings()).To(ContainSubstring("Second conversation"))
		})
	})

	Context("SelectTool", func() {
		var mockLLM *mock.MockLLM

		BeforeEach(func() {
			mockLLM = mock.NewMockLLM()
		})

		It("returns ErrNoToolSelected when the model answers with text", func() {
			mockLLM.AddCreateChatCompletionText("I can answer directly.")

			f := NewEmptyFragment().AddMessage(UserMessageRole, "Hello")
			_, selection, err := f.SelectTool(context.Background(), mockLLM, Tools{}, "")
			Expect(err).To(MatchError(ErrNoToolSelected))
			Expect(selection).To(BeNil())
		})

		It("decodes the selected tool and generates a call ID", func() {
			mockLLM.AddCreateChatCompletionFunction("get_weather", `{"city": "nyc"}`)

			f := NewEmptyFragment().AddMessage(UserMessageRole, "Weather in nyc?")
			selected, selection, err := f.SelectTool(context.Background(), mockLLM, Tools{}, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(selection).ToNot(BeNil())
			Expect(selection.Name).To(Equal("get_weather"))
			Expect(selection.Arguments).To(HaveKeyWithValue("city", "nyc"))
			Expect(selection.ID).ToNot(BeEmpty())

			Expect(selected.Messages).To(HaveLen(2))
			Expect(selected.Messages[1].ToolCalls[0].ID).To(Equal(selection.ID))
		})

		It("tolerates empty tool arguments", func() {
			mockLLM.AddCreateChatCompletionFunction("list_cities", "")

			f := NewEmptyFragment().AddMessage(UserMessageRole, "Which cities do you know?")
			_, selection, err := f.SelectTool(context.Background(), mockLLM, Tools{}, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(selection).ToNot(BeNil())
			Expect(selection.Arguments).To(BeEmpty())
		})
	})

	Context("ExtractStructure", func() {
		var mockLLM *mock.MockLLM

		BeforeEach(func() {
			mockLLM = mock.NewMockLLM()
		})

		It("decodes the forced function call into the destination", func() {
			mockLLM.AddCreateChatCompletionFunction("json", `{"extract_boolean": true}`)

			structure, boolean := structures.StructureBoolean()
			f := NewEmptyFragment().AddMessage(UserMessageRole, "Is the sky blue?")

			Expect(f.ExtractStructure(context.Background(), mockLLM, structure)).To(Succeed())
			Expect(boolean.Boolean).To(BeTrue())

			request := mockLLM.Requests[0]
			toolChoice, ok := request.ToolChoice.(openai.ToolChoice)
			Expect(ok).To(BeTrue())
			Expect(toolChoice.Function.Name).To(Equal("json"))
			Expect(request.Tools[0].Function.Strict).To(BeTrue())
		})

		It("fails when the model does not call the function", func() {
			mockLLM.AddCreateChatCompletionText("I'd rather not.")

			structure, _ := structures.StructureBoolean()
			f := NewEmptyFragment().AddMessage(UserMessageRole, "Is the sky blue?")

			err := f.ExtractStructure(context.Background(), mockLLM, structure)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no tool calls"))
		})
	})
})
