package review

import (
	"fmt"
	"strings"
)

// ResponseFormat describes the JSON shape the model must return.
const ResponseFormat = `interface Feedback {
  overallScore: number; // max 100
  ATS: {
    score: number; // rate based on ATS suitability
    tips: {
      type: "good" | "improve";
      tip: string; // give 3-4 tips
    }[];
  };
  toneAndStyle: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
  content: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
  structure: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
  skills: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
}`

const rubric = `You are an expert in ATS (Applicant Tracking System) and resume analysis.
Please analyze and rate this resume and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores. This is to help the user to improve their resume.
If available, use the job description for the job user is applying to to give more detailed feedback.
If provided, take the job description into consideration.`

// PrepareInstructions builds the instruction text sent with the stored resume.
func PrepareInstructions(jobTitle, jobDescription string) string {
	var b strings.Builder
	b.WriteString(rubric)
	b.WriteString("\n")
	fmt.Fprintf(&b, "The job title is: %s\n", strings.TrimSpace(jobTitle))
	fmt.Fprintf(&b, "The job description is: %s\n", strings.TrimSpace(jobDescription))
	fmt.Fprintf(&b, "Provide the feedback using the following format:\n%s\n", ResponseFormat)
	b.WriteString("Return the analysis as a JSON object, without any other text and without the backticks.\n")
	b.WriteString("Do not include any other text or comments.")
	return b.String()
}
