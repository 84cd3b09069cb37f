package results

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the course as a mapping that keeps column order.
func (c Course) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range c {
		n.Content = append(n.Content, scalar(g.Subject), scalar(g.Grade))
	}
	return n, nil
}

// MarshalYAML encodes the semesters as a mapping in order of appearance.
func (s Semesters) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, sem := range s {
		var v yaml.Node
		if err := v.Encode(sem.SemesterBucket); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalar(sem.Name), &v)
	}
	return n, nil
}

// MarshalYAML uses the same field names as the JSON encoding.
func (b SemesterBucket) MarshalYAML() (any, error) {
	courses := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range b.Courses {
		var v yaml.Node
		if err := v.Encode(c); err != nil {
			return nil, err
		}
		courses.Content = append(courses.Content, &v)
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalar("courses"), courses,
		scalar("semesterGPA"), {Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(b.SemesterGPA, 'f', -1, 64)},
	}}, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
