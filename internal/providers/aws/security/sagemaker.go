package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sagemakersvc "github.com/aws/aws-sdk-go-v2/service/sagemaker"
	sagemakertypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
)

func (c *Collector) listNotebookInstances(ctx context.Context, region string, _ []string) (any, error) {
	p := sagemakersvc.NewListNotebookInstancesPaginator(c.clientsFor(region).SageMaker, &sagemakersvc.ListNotebookInstancesInput{})
	notebooks, err := collector.Paginate(ctx, p.HasMorePages, func(ctx context.Context) ([]sagemakertypes.NotebookInstanceSummary, error) {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.NotebookInstances, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notebook instances: %w", err)
	}
	return notebooks, nil
}

func (c *Collector) describeNotebookInstance(ctx context.Context, region string, path []string) (any, error) {
	out, err := c.clientsFor(region).SageMaker.DescribeNotebookInstance(ctx, &sagemakersvc.DescribeNotebookInstanceInput{
		NotebookInstanceName: aws.String(path[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("describe notebook instance %s: %w", path[0], err)
	}
	return NotebookInstance{
		Name:                 aws.ToString(out.NotebookInstanceName),
		ARN:                  aws.ToString(out.NotebookInstanceArn),
		Status:               string(out.NotebookInstanceStatus),
		KmsKeyID:             aws.ToString(out.KmsKeyId),
		DirectInternetAccess: string(out.DirectInternetAccess),
		RootAccess:           string(out.RootAccess),
	}, nil
}
